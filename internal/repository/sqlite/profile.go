package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/cpdtrack/internal/models"
)

func (r *SQLiteRepo) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	ts := now()
	p.Created, p.Updated = ts, ts
	_, err := r.conn.Exec(ctx, `INSERT INTO profiles (id, email, first_name, last_name, peo_number, email_notifications, cpd_goal, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.FirstName, p.LastName, p.PEONumber, p.EmailNotifications, p.CPDGoal, p.Created, p.Updated)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create profile: %w", models.ErrConflict)
		}
		return err
	}

	return nil
}

func (r *SQLiteRepo) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, email, first_name, last_name, peo_number, email_notifications, cpd_goal, created, updated FROM profiles WHERE id = ?`, id)
	var p models.Profile
	var first, last, peo sql.NullString
	if err := row.Scan(&p.ID, &p.Email, &first, &last, &peo, &p.EmailNotifications, &p.CPDGoal, &p.Created, &p.Updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	p.FirstName = nullStringPtr(first)
	p.LastName = nullStringPtr(last)
	p.PEONumber = nullStringPtr(peo)

	return &p, nil
}

func (r *SQLiteRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return fmt.Errorf("profile is nil")
	}

	p.Updated = now()
	res, err := r.conn.Exec(ctx, `UPDATE profiles SET first_name = ?, last_name = ?, peo_number = ?, email_notifications = ?, cpd_goal = ?, updated = ? WHERE id = ?`,
		p.FirstName, p.LastName, p.PEONumber, p.EmailNotifications, p.CPDGoal, p.Updated, p.ID)
	if err != nil {
		return err
	}

	return requireAffected(res)
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
