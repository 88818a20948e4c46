package repository

import (
	"context"

	"github.com/garnizeh/cpdtrack/internal/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Getters return (nil, nil) when the row does not exist.

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	MarkVerified(ctx context.Context, id string) error
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
}

// LogRepo scopes every statement to the owning user.
type LogRepo interface {
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

type GoalRepo interface {
	GetGoal(ctx context.Context, userID string, year int) (*models.YearlyGoal, error)
	InsertGoal(ctx context.Context, g *models.YearlyGoal) (int64, error)
	UpdateGoal(ctx context.Context, g *models.YearlyGoal) error
}

type TokenRepo interface {
	RevokeToken(ctx context.Context, jti string, expires int64) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	PurgeExpired(ctx context.Context, now int64) (int64, error)
}
