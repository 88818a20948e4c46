package compliance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garnizeh/cpdtrack/internal/models"
)

func TestSupplementaryLimit(t *testing.T) {
	assert.Equal(t, 6.0, SupplementaryLimit(30))
	assert.Equal(t, 6.0, SupplementaryLimit(31))
	assert.Equal(t, 0.0, SupplementaryLimit(1))
	assert.Equal(t, 0.0, SupplementaryLimit(4))
	assert.Equal(t, 1.0, SupplementaryLimit(5))
	assert.Equal(t, 40.0, SupplementaryLimit(200))

	for goal := models.MinGoal; goal <= models.MaxGoal; goal++ {
		assert.Equal(t, float64(goal/5), SupplementaryLimit(goal), "goal %d", goal)
	}
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name          string
		priority      float64
		supplementary float64
		goal          int
		wantCounted   float64
		wantTotal     float64
		wantPercent   float64
		wantCompliant bool
	}{
		{"capped supplementary reaches goal", 25, 10, 30, 6, 31, 31.0 / 30 * 100, true},
		{"excess supplementary never counts", 0, 50, 30, 6, 6, 20, false},
		{"exactly at goal", 24, 6, 30, 6, 30, 100, true},
		{"just below goal", 23.5, 6, 30, 6, 29.5, 29.5 / 30 * 100, false},
		{"under cap counts fully", 10, 3.5, 30, 3.5, 13.5, 45, false},
		{"nothing logged", 0, 0, 30, 0, 0, 0, false},
		{"tiny goal has zero cap", 0, 10, 4, 0, 0, 0, false},
		{"priority only above goal", 50, 0, 40, 0, 50, 125, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Calculate(2024, tt.priority, tt.supplementary, tt.goal)

			assert.Equal(t, 2024, v.Year)
			assert.Equal(t, tt.goal, v.Goal)
			assert.Equal(t, tt.priority, v.PriorityHours)
			assert.Equal(t, tt.supplementary, v.SupplementaryHours)
			assert.Equal(t, tt.wantCounted, v.SupplementaryCountedHours)
			assert.Equal(t, tt.wantTotal, v.TotalCountedHours)
			assert.InDelta(t, tt.wantPercent, v.ProgressPercentage, 1e-9)
			assert.Equal(t, tt.wantCompliant, v.IsCompliant)
		})
	}
}

func TestCalculate_CountedNeverExceedsInputs(t *testing.T) {
	for goal := 1; goal <= 200; goal += 7 {
		for supp := 0.0; supp <= 60; supp += 2.5 {
			v := Calculate(2024, 1, supp, goal)
			assert.LessOrEqual(t, v.SupplementaryCountedHours, supp)
			assert.LessOrEqual(t, v.SupplementaryCountedHours, v.SupplementaryLimit)
			assert.Equal(t, v.TotalCountedHours >= float64(goal), v.IsCompliant)
		}
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	assert.Equal(t, Calculate(2023, 12.5, 7, 31), Calculate(2023, 12.5, 7, 31))
}

func TestSum(t *testing.T) {
	entries := []models.LogEntry{
		{Hours: 2, Category: models.CategoryPriority},
		{Hours: 1.5, Category: models.CategorySupplementary},
		{Hours: 3.5, Category: models.CategoryPriority},
		{Hours: 4, Category: models.CategorySupplementary},
		{Hours: 9, Category: "Other"},
	}

	p, s := Sum(entries)
	assert.Equal(t, 5.5, p)
	assert.Equal(t, 5.5, s)

	p, s = Sum(nil)
	assert.Zero(t, p)
	assert.Zero(t, s)
}
