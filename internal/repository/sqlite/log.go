package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/garnizeh/cpdtrack/internal/models"
)

var logColumns = []string{"id", "user_id", "date", "description", "hours", "category", "attachment_url", "attachment_name", "created", "updated"}

func (r *SQLiteRepo) CreateLog(ctx context.Context, e *models.LogEntry) error {
	if e == nil {
		return fmt.Errorf("log entry is nil")
	}

	ts := now()
	e.Created, e.Updated = ts, ts
	url, name := attachmentColumns(e.Attachment)

	query, args, err := sq.Insert("cpd_logs").
		Columns(logColumns...).
		Values(e.ID, e.UserID, e.Date, e.Description, e.Hours, string(e.Category), url, name, e.Created, e.Updated).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = r.conn.Exec(ctx, query, args...)
	return err
}

func (r *SQLiteRepo) GetLog(ctx context.Context, userID, id string) (*models.LogEntry, error) {
	query, args, err := sq.Select(logColumns...).
		From("cpd_logs").
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	e, err := scanLog(r.conn.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return e, nil
}

// UpdateLog rewrites the mutable fields of an entry owned by e.UserID.
func (r *SQLiteRepo) UpdateLog(ctx context.Context, e *models.LogEntry) error {
	if e == nil {
		return fmt.Errorf("log entry is nil")
	}

	e.Updated = now()
	url, name := attachmentColumns(e.Attachment)

	query, args, err := sq.Update("cpd_logs").
		Set("date", e.Date).
		Set("description", e.Description).
		Set("hours", e.Hours).
		Set("category", string(e.Category)).
		Set("attachment_url", url).
		Set("attachment_name", name).
		Set("updated", e.Updated).
		Where(sq.Eq{"id": e.ID, "user_id": e.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func (r *SQLiteRepo) DeleteLog(ctx context.Context, userID, id string) error {
	res, err := r.conn.Exec(ctx, `DELETE FROM cpd_logs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

// ListLogs returns entries newest date first. A zero limit returns every match.
func (r *SQLiteRepo) ListLogs(ctx context.Context, userID string, f models.LogFilter) ([]models.LogEntry, error) {
	b := applyLogFilter(sq.Select(logColumns...).From("cpd_logs"), userID, f).
		OrderBy("date DESC", "created DESC")
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		if f.Limit <= 0 {
			// SQLite requires a LIMIT clause before OFFSET.
			b = b.Limit(uint64(1<<63 - 1))
		}
		b = b.Offset(uint64(f.Offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LogEntry
	for rows.Next() {
		e, err := scanLog(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, *e)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) CountLogs(ctx context.Context, userID string, f models.LogFilter) (int64, error) {
	query, args, err := applyLogFilter(sq.Select("COUNT(*)").From("cpd_logs"), userID, f).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var cnt int64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&cnt); err != nil {
		return 0, err
	}
	return cnt, nil
}

// DailyHours sums hours already logged by userID on date, skipping excludeID when set.
func (r *SQLiteRepo) DailyHours(ctx context.Context, userID, date, excludeID string) (float64, error) {
	b := sq.Select("COALESCE(SUM(hours), 0)").
		From("cpd_logs").
		Where(sq.Eq{"user_id": userID, "date": date})
	if excludeID != "" {
		b = b.Where(sq.NotEq{"id": excludeID})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum: %w", err)
	}

	var total float64
	if err := r.conn.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// LogYears returns the distinct calendar years of a user's entry dates, newest first.
func (r *SQLiteRepo) LogYears(ctx context.Context, userID string) ([]int, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT DISTINCT CAST(substr(date, 1, 4) AS INTEGER) AS year FROM cpd_logs WHERE user_id = ? ORDER BY year DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}

	return years, rows.Err()
}

func (r *SQLiteRepo) Stats(ctx context.Context, userID string) (*models.LogStats, error) {
	row := r.conn.QueryRow(ctx, `SELECT
		COALESCE(SUM(hours), 0),
		COALESCE(SUM(CASE WHEN category = 'Priority' THEN hours END), 0),
		COALESCE(SUM(CASE WHEN category = 'Supplementary' THEN hours END), 0),
		COUNT(*)
		FROM cpd_logs WHERE user_id = ?`, userID)

	var s models.LogStats
	if err := row.Scan(&s.TotalHours, &s.PriorityHours, &s.SupplementaryHours, &s.TotalLogs); err != nil {
		return nil, err
	}
	return &s, nil
}

func applyLogFilter(b sq.SelectBuilder, userID string, f models.LogFilter) sq.SelectBuilder {
	b = b.Where(sq.Eq{"user_id": userID})
	if f.Year > 0 {
		b = b.Where(sq.GtOrEq{"date": fmt.Sprintf("%04d-01-01", f.Year)}).
			Where(sq.LtOrEq{"date": fmt.Sprintf("%04d-12-31", f.Year)})
	}
	if f.Category != "" {
		b = b.Where(sq.Eq{"category": string(f.Category)})
	}
	return b
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLog(s scanner) (*models.LogEntry, error) {
	var e models.LogEntry
	var category string
	var url, name sql.NullString
	if err := s.Scan(&e.ID, &e.UserID, &e.Date, &e.Description, &e.Hours, &category, &url, &name, &e.Created, &e.Updated); err != nil {
		return nil, err
	}

	e.Category = models.Category(category)
	if url.Valid {
		e.Attachment = &models.Attachment{URL: url.String, Name: name.String}
	}

	return &e, nil
}

func attachmentColumns(a *models.Attachment) (sql.NullString, sql.NullString) {
	if a == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: a.URL, Valid: true}, sql.NullString{String: a.Name, Valid: true}
}
