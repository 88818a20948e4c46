package cpd

import (
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/garnizeh/cpdtrack/internal/models"
)

const maxDescriptionLen = 2000

// LogInput holds the user-editable fields of a log entry.
type LogInput struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Hours       float64         `json:"hours"`
	Category    models.Category `json:"category"`
	// RemoveAttachment drops the stored attachment on update when no new file is uploaded.
	RemoveAttachment bool `json:"remove_attachment"`
}

// Validate checks field rules and returns the first violation as a *models.ValidationError.
func (in *LogInput) Validate() error {
	in.Description = strings.TrimSpace(in.Description)
	in.Date = strings.TrimSpace(in.Date)

	if _, err := time.Parse(models.DateLayout, in.Date); err != nil {
		return models.NewValidationError("date", "must be a date in YYYY-MM-DD format")
	}
	if in.Description == "" {
		return models.NewValidationError("description", "required")
	}
	if utf8.RuneCountInString(in.Description) > maxDescriptionLen {
		return models.NewValidationError("description", "must be at most 2000 characters")
	}
	if in.Hours <= 0 {
		return models.NewValidationError("hours", "must be greater than 0")
	}
	if in.Hours > models.MaxDailyHours {
		return models.NewValidationError("hours", "must be at most 24")
	}
	if in.Hours*2 != math.Trunc(in.Hours*2) {
		return models.NewValidationError("hours", "must be a multiple of 0.5")
	}
	if !in.Category.Valid() {
		return models.NewValidationError("category", "must be Priority or Supplementary")
	}
	return nil
}

// Upload is an attachment submitted alongside a log entry.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ValidateGoal rejects goals outside the accepted range.
func ValidateGoal(goal int) error {
	if goal < models.MinGoal || goal > models.MaxGoal {
		return models.NewValidationError("goal", "must be between 1 and 200")
	}
	return nil
}
