package sqlite

import (
	"context"
	"io"
	"time"

	"log/slog"

	"github.com/garnizeh/cpdtrack/internal/db"
	"github.com/garnizeh/cpdtrack/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn   *db.DB
	logger *slog.Logger
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.AccountRepo = (*SQLiteRepo)(nil)
var _ repository.ProfileRepo = (*SQLiteRepo)(nil)
var _ repository.LogRepo = (*SQLiteRepo)(nil)
var _ repository.GoalRepo = (*SQLiteRepo)(nil)
var _ repository.TokenRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB, logger *slog.Logger) *SQLiteRepo {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &SQLiteRepo{conn: conn, logger: logger}
}

// RunInTx exposes the connection's transaction scope to services.
func (r *SQLiteRepo) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.conn.RunInTx(ctx, fn)
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
