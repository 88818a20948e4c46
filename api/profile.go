package api

import (
	"context"
	"net/http"

	"github.com/garnizeh/cpdtrack/internal/identity"
	"github.com/garnizeh/cpdtrack/internal/models"
)

type profileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, patch identity.ProfilePatch) (*models.Profile, error)
}

type ProfileHandler struct {
	svc profileService
}

func NewProfileHandler(svc profileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProfile(r.Context(), mustSession(r).UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch identity.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	p, err := h.svc.UpdateProfile(r.Context(), mustSession(r).UserID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}
