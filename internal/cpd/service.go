// Package cpd implements CPD log keeping, yearly goals and compliance reporting.
package cpd

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/garnizeh/cpdtrack/internal/models"
)

type logRepo interface {
	CreateLog(ctx context.Context, e *models.LogEntry) error
	GetLog(ctx context.Context, userID, id string) (*models.LogEntry, error)
	UpdateLog(ctx context.Context, e *models.LogEntry) error
	DeleteLog(ctx context.Context, userID, id string) error
	ListLogs(ctx context.Context, userID string, f models.LogFilter) ([]models.LogEntry, error)
	CountLogs(ctx context.Context, userID string, f models.LogFilter) (int64, error)
	DailyHours(ctx context.Context, userID, date, excludeID string) (float64, error)
	LogYears(ctx context.Context, userID string) ([]int, error)
	Stats(ctx context.Context, userID string) (*models.LogStats, error)
}

type goalRepo interface {
	GetGoal(ctx context.Context, userID string, year int) (*models.YearlyGoal, error)
	InsertGoal(ctx context.Context, g *models.YearlyGoal) (int64, error)
	UpdateGoal(ctx context.Context, g *models.YearlyGoal) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PublicURL(key string) string
}

type Options struct {
	// ValidateOnEdit runs the daily limit check on edits too.
	ValidateOnEdit bool
	// RecentLimit is the number of entries shown on the dashboard.
	RecentLimit int
}

// Service implements log, goal and compliance operations for a single user at a time.
type Service struct {
	log   *slog.Logger
	logs  logRepo
	goals goalRepo
	tx    txManager
	blobs blobStore
	opts  Options
	now   func() time.Time

	goalLocks *keyedMutex
}

func NewService(logger *slog.Logger, logs logRepo, goals goalRepo, tx txManager, blobs blobStore, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = 5
	}
	return &Service{
		log:       logger.With("service", "cpd"),
		logs:      logs,
		goals:     goals,
		tx:        tx,
		blobs:     blobs,
		opts:      opts,
		now:       time.Now,
		goalLocks: newKeyedMutex(),
	}
}
