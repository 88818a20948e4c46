package cpd

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/garnizeh/cpdtrack/internal/compliance"
	"github.com/garnizeh/cpdtrack/internal/models"
)

// Dashboard is the landing summary for one year.
type Dashboard struct {
	Year           int                `json:"year"`
	AvailableYears []int              `json:"available_years"`
	Compliance     compliance.Verdict `json:"compliance"`
	Recent         []models.LogEntry  `json:"recent"`
}

// YearlyCompliance computes the verdict for the entries dated within year.
func (s *Service) YearlyCompliance(ctx context.Context, userID string, year int) (*compliance.Verdict, error) {
	goal, err := s.GetGoal(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	entries, err := s.logs.ListLogs(ctx, userID, models.LogFilter{Year: year})
	if err != nil {
		return nil, fmt.Errorf("list logs for %d: %w", year, err)
	}

	priority, supplementary := compliance.Sum(entries)
	v := compliance.Calculate(year, priority, supplementary, goal)
	return &v, nil
}

// AvailableYears lists the years that have entries plus the current year, newest first.
func (s *Service) AvailableYears(ctx context.Context, userID string) ([]int, error) {
	years, err := s.logs.LogYears(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("log years: %w", err)
	}

	current := s.now().Year()
	if !slices.Contains(years, current) {
		years = append(years, current)
	}
	slices.Sort(years)
	slices.Reverse(years)
	return years, nil
}

// Dashboard resolves the displayed year and loads its verdict and most recent entries.
// A year without entries falls back to the newest available year.
func (s *Service) Dashboard(ctx context.Context, userID string, year int) (*Dashboard, error) {
	years, err := s.AvailableYears(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(years, year) {
		year = years[0]
	}

	d := &Dashboard{Year: year, AvailableYears: years}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.YearlyCompliance(gctx, userID, year)
		if err != nil {
			return err
		}
		d.Compliance = *v
		return nil
	})
	g.Go(func() error {
		recent, err := s.logs.ListLogs(gctx, userID, models.LogFilter{Year: year, Limit: s.opts.RecentLimit})
		if err != nil {
			return fmt.Errorf("recent logs: %w", err)
		}
		if recent == nil {
			recent = []models.LogEntry{}
		}
		d.Recent = recent
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return d, nil
}
