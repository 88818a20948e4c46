package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/cpdtrack/internal/models"
)

const accountColumns = `id, email, password_hash, first_name, last_name, verified, created`

func (r *SQLiteRepo) CreateAccount(ctx context.Context, a *models.Account) error {
	if a == nil {
		return fmt.Errorf("account is nil")
	}
	if a.Created == 0 {
		a.Created = now()
	}

	var pw sql.NullString
	if a.PasswordHash != "" {
		pw = sql.NullString{String: a.PasswordHash, Valid: true}
	}

	_, err := r.conn.Exec(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, strings.ToLower(a.Email), pw, a.FirstName, a.LastName, a.Verified, a.Created)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create account: %w", models.ErrConflict)
		}
		return err
	}

	return nil
}

func (r *SQLiteRepo) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
}

func (r *SQLiteRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.scanAccount(r.conn.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = ?`, strings.ToLower(email)))
}

func (r *SQLiteRepo) MarkVerified(ctx context.Context, id string) error {
	res, err := r.conn.Exec(ctx, `UPDATE accounts SET verified = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *SQLiteRepo) scanAccount(row *sql.Row) (*models.Account, error) {
	var a models.Account
	var pw sql.NullString
	if err := row.Scan(&a.ID, &a.Email, &pw, &a.FirstName, &a.LastName, &a.Verified, &a.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, err
	}

	if pw.Valid {
		a.PasswordHash = pw.String
	}

	return &a, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return nil
}
