package cpd

import (
	"context"
	"fmt"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// SetGoal stores goal for (userID, year), inserting or updating as needed.
func (s *Service) SetGoal(ctx context.Context, userID string, year, goal int) (*models.YearlyGoal, error) {
	if err := ValidateGoal(goal); err != nil {
		return nil, err
	}
	if year <= 0 {
		return nil, models.NewValidationError("year", "must be positive")
	}

	unlock := s.goalLocks.Lock(fmt.Sprintf("%s:%d", userID, year))
	defer unlock()

	var out *models.YearlyGoal
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		g, err := s.goals.GetGoal(ctx, userID, year)
		if err != nil {
			return fmt.Errorf("get goal: %w", err)
		}

		if g == nil {
			g = &models.YearlyGoal{UserID: userID, Year: year, Goal: goal}
			if _, err := s.goals.InsertGoal(ctx, g); err != nil {
				return fmt.Errorf("insert goal: %w", err)
			}
		} else {
			g.Goal = goal
			if err := s.goals.UpdateGoal(ctx, g); err != nil {
				return fmt.Errorf("update goal: %w", err)
			}
		}

		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "goal set", "user_id", userID, "year", year, "goal", goal)
	return out, nil
}

// GetGoal returns the stored goal for (userID, year) or models.DefaultGoal.
func (s *Service) GetGoal(ctx context.Context, userID string, year int) (int, error) {
	g, err := s.goals.GetGoal(ctx, userID, year)
	if err != nil {
		return 0, fmt.Errorf("get goal: %w", err)
	}
	if g == nil {
		return models.DefaultGoal, nil
	}
	return g.Goal, nil
}
