package cpd

import (
	"context"
	"fmt"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// checkDailyLimit rejects hours that would push the user's total for date past
// models.MaxDailyHours. excludeID drops an entry's own hours when it is being edited.
// The check and the following write are not atomic.
func (s *Service) checkDailyLimit(ctx context.Context, userID, date string, hours float64, excludeID string) error {
	existing, err := s.logs.DailyHours(ctx, userID, date, excludeID)
	if err != nil {
		return fmt.Errorf("daily hours: %w", err)
	}

	if existing+hours > models.MaxDailyHours {
		s.log.InfoContext(ctx, "daily limit exceeded", "user_id", userID, "date", date, "existing", existing, "requested", hours)
		return models.ErrDailyLimitExceeded
	}
	return nil
}
