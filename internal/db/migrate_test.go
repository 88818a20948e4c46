package db_test

import (
	"context"
	"testing"
	"testing/fstest"

	dbfs "github.com/garnizeh/cpdtrack/db"
	"github.com/garnizeh/cpdtrack/internal/db"
)

func TestMigrate_Idempotent(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if err := db.Migrate(ctx, d, dbfs.Migrations); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("scan schema_migrations count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 migration recorded, got %d", count)
	}

	for _, table := range []string{"accounts", "profiles", "cpd_logs", "yearly_goals", "revoked_tokens"} {
		var name string
		if err := d.QueryRow(ctx, `SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name); err != nil {
			t.Fatalf("expected %s table exists: %v", table, err)
		}
	}
}

func TestMigrate_OrderAndFailure(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	fsys := fstest.MapFS{
		"migrations/0002_second.sql": {Data: []byte(`INSERT INTO t (v) VALUES ('second');`)},
		"migrations/0001_first.sql":  {Data: []byte(`CREATE TABLE t (v TEXT);`)},
		"migrations/README.md":       {Data: []byte(`ignored`)},
	}
	if err := db.Migrate(ctx, d, fsys); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	var v string
	if err := d.QueryRow(ctx, `SELECT v FROM t`).Scan(&v); err != nil || v != "second" {
		t.Fatalf("expected ordered application, got %q, %v", v, err)
	}

	bad := fstest.MapFS{
		"migrations/0003_bad.sql": {Data: []byte(`THIS IS NOT SQL;`)},
	}
	if err := db.Migrate(ctx, d, bad); err == nil {
		t.Fatalf("expected error for broken migration")
	}

	var count int
	if err := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = '0003_bad'`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("failed migration must not be recorded")
	}
}

func TestMigrate_MissingDir(t *testing.T) {
	d := openTemp(t)
	if err := db.Migrate(context.Background(), d, fstest.MapFS{}); err == nil {
		t.Fatalf("expected error when migrations dir is missing")
	}
}
