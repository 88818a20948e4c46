// Package compliance turns categorized CPD hours and a yearly goal into a verdict.
package compliance

import (
	"math"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// SupplementaryShare is the fraction of the goal that supplementary hours may cover.
const SupplementaryShare = 0.2

// Verdict is the derived, never persisted, compliance summary for one year.
type Verdict struct {
	Year                      int     `json:"year"`
	Goal                      int     `json:"goal"`
	PriorityHours             float64 `json:"priority_hours"`
	SupplementaryHours        float64 `json:"supplementary_hours"`
	SupplementaryCountedHours float64 `json:"supplementary_counted_hours"`
	TotalCountedHours         float64 `json:"total_counted_hours"`
	ProgressPercentage        float64 `json:"progress_percentage"`
	SupplementaryLimit        float64 `json:"supplementary_limit"`
	IsCompliant               bool    `json:"is_compliant"`
}

// Calculate is pure: callers guarantee non-negative hours and goal > 0.
func Calculate(year int, priorityHours, supplementaryHours float64, goal int) Verdict {
	limit := SupplementaryLimit(goal)
	counted := math.Min(supplementaryHours, limit)
	total := priorityHours + counted

	return Verdict{
		Year:                      year,
		Goal:                      goal,
		PriorityHours:             priorityHours,
		SupplementaryHours:        supplementaryHours,
		SupplementaryCountedHours: counted,
		TotalCountedHours:         total,
		ProgressPercentage:        total / float64(goal) * 100,
		SupplementaryLimit:        limit,
		IsCompliant:               total >= float64(goal),
	}
}

// SupplementaryLimit is floor(goal * 0.2).
func SupplementaryLimit(goal int) float64 {
	return math.Floor(float64(goal) * SupplementaryShare)
}

// Sum partitions entries by category and returns the hour totals of each partition.
// Entries with an unknown category are ignored.
func Sum(entries []models.LogEntry) (priority, supplementary float64) {
	for _, e := range entries {
		switch e.Category {
		case models.CategoryPriority:
			priority += e.Hours
		case models.CategorySupplementary:
			supplementary += e.Hours
		}
	}
	return priority, supplementary
}
