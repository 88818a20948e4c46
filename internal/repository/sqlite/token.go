package sqlite

import (
	"context"
)

func (r *SQLiteRepo) RevokeToken(ctx context.Context, jti string, expires int64) error {
	_, err := r.conn.Exec(ctx, `INSERT INTO revoked_tokens (jti, expires) VALUES (?, ?) ON CONFLICT(jti) DO NOTHING`, jti, expires)
	return err
}

func (r *SQLiteRepo) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var cnt int
	if err := r.conn.QueryRow(ctx, `SELECT COUNT(1) FROM revoked_tokens WHERE jti = ?`, jti).Scan(&cnt); err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// PurgeExpired drops revocations whose token has already expired.
func (r *SQLiteRepo) PurgeExpired(ctx context.Context, now int64) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM revoked_tokens WHERE expires < ?`, now)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info("purged revoked tokens", "count", n)
	}
	return n, nil
}
