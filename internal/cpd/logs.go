package cpd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/garnizeh/cpdtrack/internal/blob"
	"github.com/garnizeh/cpdtrack/internal/models"
)

// LogPage is one page of a filtered log listing.
type LogPage struct {
	Items  []models.LogEntry `json:"items"`
	Total  int64             `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// CreateLog validates in, enforces the daily limit, stores the optional
// attachment and then inserts the entry. Nothing is uploaded or written when
// validation fails.
func (s *Service) CreateLog(ctx context.Context, userID string, in LogInput, up *Upload) (*models.LogEntry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkDailyLimit(ctx, userID, in.Date, in.Hours, ""); err != nil {
		return nil, err
	}

	e := &models.LogEntry{
		ID:          uuid.NewString(),
		UserID:      userID,
		Date:        in.Date,
		Description: in.Description,
		Hours:       in.Hours,
		Category:    in.Category,
	}

	if up != nil {
		att, err := s.upload(ctx, userID, up)
		if err != nil {
			return nil, err
		}
		e.Attachment = att
	}

	if err := s.logs.CreateLog(ctx, e); err != nil {
		return nil, fmt.Errorf("create log: %w", err)
	}

	s.log.InfoContext(ctx, "log created", "user_id", userID, "log_id", e.ID, "date", e.Date, "hours", e.Hours)
	return e, nil
}

// UpdateLog rewrites an entry owned by userID. An entry that does not exist
// or belongs to someone else yields models.ErrForbidden, checked before the
// input. A new upload replaces the attachment reference; without one the
// previous attachment is kept unless in.RemoveAttachment is set.
func (s *Service) UpdateLog(ctx context.Context, userID, id string, in LogInput, up *Upload) (*models.LogEntry, error) {
	e, err := s.logs.GetLog(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("update log %s: %w", id, models.ErrForbidden)
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	if s.opts.ValidateOnEdit {
		if err := s.checkDailyLimit(ctx, userID, in.Date, in.Hours, e.ID); err != nil {
			return nil, err
		}
	}

	if up != nil {
		att, err := s.upload(ctx, userID, up)
		if err != nil {
			return nil, err
		}
		e.Attachment = att
	} else if in.RemoveAttachment {
		e.Attachment = nil
	}

	e.Date = in.Date
	e.Description = in.Description
	e.Hours = in.Hours
	e.Category = in.Category

	if err := s.logs.UpdateLog(ctx, e); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("update log %s: %w", id, models.ErrForbidden)
		}
		return nil, fmt.Errorf("update log: %w", err)
	}

	s.log.InfoContext(ctx, "log updated", "user_id", userID, "log_id", e.ID)
	return e, nil
}

func (s *Service) GetLog(ctx context.Context, userID, id string) (*models.LogEntry, error) {
	e, err := s.logs.GetLog(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	if e == nil {
		return nil, fmt.Errorf("log %s: %w", id, models.ErrNotFound)
	}
	return e, nil
}

func (s *Service) DeleteLog(ctx context.Context, userID, id string) error {
	if err := s.logs.DeleteLog(ctx, userID, id); err != nil {
		return fmt.Errorf("delete log %s: %w", id, err)
	}

	s.log.InfoContext(ctx, "log deleted", "user_id", userID, "log_id", id)
	return nil
}

// ListLogs returns entries matching f, newest date first, with the total match count.
func (s *Service) ListLogs(ctx context.Context, userID string, f models.LogFilter) (*LogPage, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, models.NewValidationError("category", "must be Priority or Supplementary")
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, models.NewValidationError("limit", "must not be negative")
	}

	items, err := s.logs.ListLogs(ctx, userID, f)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	total, err := s.logs.CountLogs(ctx, userID, models.LogFilter{Year: f.Year, Category: f.Category})
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}
	if items == nil {
		items = []models.LogEntry{}
	}

	return &LogPage{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

// Stats returns all-time totals over the user's entries.
func (s *Service) Stats(ctx context.Context, userID string) (*models.LogStats, error) {
	st, err := s.logs.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

func (s *Service) upload(ctx context.Context, userID string, up *Upload) (*models.Attachment, error) {
	key := blob.Key(userID, up.Filename, s.now())
	if err := s.blobs.Upload(ctx, key, up.Body, up.ContentType); err != nil {
		s.log.ErrorContext(ctx, "attachment upload failed", "user_id", userID, "key", key, "error", err)
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	return &models.Attachment{URL: s.blobs.PublicURL(key), Name: up.Filename}, nil
}
