package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// ProfilePatch lists profile fields to change. Nil fields are left alone.
type ProfilePatch struct {
	FirstName          *string `json:"first_name"`
	LastName           *string `json:"last_name"`
	PEONumber          *string `json:"peo_number"`
	EmailNotifications *bool   `json:"email_notifications"`
	CPDGoal            *int    `json:"cpd_goal"`
}

func (p ProfilePatch) Validate() error {
	if p.CPDGoal != nil && (*p.CPDGoal < models.MinGoal || *p.CPDGoal > models.MaxGoal) {
		return models.NewValidationError("cpd_goal", "must be between 1 and 200")
	}
	for field, v := range map[string]*string{"first_name": p.FirstName, "last_name": p.LastName, "peo_number": p.PEONumber} {
		if v != nil && len(*v) > 255 {
			return models.NewValidationError(field, "too long")
		}
	}
	return nil
}

func newProfile(a *models.Account) *models.Profile {
	return &models.Profile{
		ID:                 a.ID,
		Email:              a.Email,
		FirstName:          optional(a.FirstName),
		LastName:           optional(a.LastName),
		EmailNotifications: true,
		CPDGoal:            models.DefaultGoal,
	}
}

// GetProfile returns the user's profile, creating it from the account when missing.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if p != nil {
		return p, nil
	}

	a, err := s.accounts.GetAccountByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("account %s: %w", userID, models.ErrNotFound)
	}

	p = newProfile(a)
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		if !errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("create profile: %w", err)
		}
		// Created concurrently.
		return s.profiles.GetProfile(ctx, userID)
	}

	s.log.InfoContext(ctx, "profile created on first access", "user_id", userID)
	return p, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (*models.Profile, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	p, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if patch.FirstName != nil {
		p.FirstName = optional(strings.TrimSpace(*patch.FirstName))
	}
	if patch.LastName != nil {
		p.LastName = optional(strings.TrimSpace(*patch.LastName))
	}
	if patch.PEONumber != nil {
		p.PEONumber = optional(strings.TrimSpace(*patch.PEONumber))
	}
	if patch.EmailNotifications != nil {
		p.EmailNotifications = *patch.EmailNotifications
	}
	if patch.CPDGoal != nil {
		p.CPDGoal = *patch.CPDGoal
	}

	if err := s.profiles.UpdateProfile(ctx, p); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// optional maps an empty string to NULL.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
