package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/cpdtrack/internal/models"
)

func (r *SQLiteRepo) GetGoal(ctx context.Context, userID string, year int) (*models.YearlyGoal, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, user_id, year, goal, created, updated FROM yearly_goals WHERE user_id = ? AND year = ?`, userID, year)
	var g models.YearlyGoal
	if err := row.Scan(&g.ID, &g.UserID, &g.Year, &g.Goal, &g.Created, &g.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	return &g, nil
}

func (r *SQLiteRepo) InsertGoal(ctx context.Context, g *models.YearlyGoal) (int64, error) {
	if g == nil {
		return 0, fmt.Errorf("goal is nil")
	}

	ts := now()
	g.Created, g.Updated = ts, ts
	res, err := r.conn.Exec(ctx, `INSERT INTO yearly_goals (user_id, year, goal, created, updated) VALUES (?, ?, ?, ?, ?)`, g.UserID, g.Year, g.Goal, g.Created, g.Updated)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert goal: %w", models.ErrConflict)
		}
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	g.ID = id

	return id, nil
}

func (r *SQLiteRepo) UpdateGoal(ctx context.Context, g *models.YearlyGoal) error {
	if g == nil {
		return fmt.Errorf("goal is nil")
	}

	g.Updated = now()
	res, err := r.conn.Exec(ctx, `UPDATE yearly_goals SET goal = ?, updated = ? WHERE user_id = ? AND year = ?`, g.Goal, g.Updated, g.UserID, g.Year)
	if err != nil {
		return err
	}

	return requireAffected(res)
}
