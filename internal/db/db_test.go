package db_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	dbpkg "github.com/garnizeh/cpdtrack/internal/db"
)

func openTemp(t *testing.T) *dbpkg.DB {
	t.Helper()
	d, err := dbpkg.New(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestNew_Close_GetConn(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	d, err := dbpkg.New(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	conn := d.GetConn()
	if conn == nil {
		t.Fatalf("expected non-nil sql.DB from GetConn")
	}

	if err := d.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}

func TestExec_QueryRow_QueryRows(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`); err != nil {
		t.Fatalf("Exec create table returned error: %v", err)
	}

	res, err := d.Exec(ctx, `INSERT INTO items (name) VALUES (?), (?)`, "foo", "bar")
	if err != nil {
		t.Fatalf("Exec insert returned error: %v", err)
	}
	if n, _ := res.RowsAffected(); n != 2 {
		t.Fatalf("expected 2 rows affected, got %d", n)
	}

	var name string
	if err := d.QueryRow(ctx, `SELECT name FROM items WHERE id = ?`, 1).Scan(&name); err != nil {
		t.Fatalf("QueryRow scan returned error: %v", err)
	}
	if name != "foo" {
		t.Fatalf("expected name 'foo' got %q", name)
	}

	rows, err := d.QueryRows(ctx, `SELECT name FROM items ORDER BY id`)
	if err != nil {
		t.Fatalf("QueryRows returned error: %v", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			t.Fatalf("scan: %v", err)
		}
		names = append(names, n)
	}
	if len(names) != 2 || names[1] != "bar" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestRunInTx_CommitAndRollback(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := d.RunInTx(ctx, func(ctx context.Context) error {
		_, err := d.Exec(ctx, `INSERT INTO items (name) VALUES ('kept')`)
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx commit path: %v", err)
	}

	boom := errors.New("boom")
	err = d.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := d.Exec(ctx, `INSERT INTO items (name) VALUES ('dropped')`); err != nil {
			return err
		}
		// reads inside the transaction see the pending row
		var cnt int
		if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&cnt); err != nil {
			return err
		}
		if cnt != 2 {
			t.Errorf("expected 2 rows inside tx, got %d", cnt)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom from RunInTx, got %v", err)
	}

	var cnt int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected rollback to leave 1 row, got %d", cnt)
	}
}

func TestRunInTx_PanicRollsBack(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t)

	if _, err := d.Exec(ctx, `CREATE TABLE items (name TEXT)`); err != nil {
		t.Fatalf("create table: %v", err)
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = d.RunInTx(ctx, func(ctx context.Context) error {
			_, _ = d.Exec(ctx, `INSERT INTO items (name) VALUES ('x')`)
			panic("boom")
		})
	}()

	var cnt int
	if err := d.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&cnt); err != nil {
		t.Fatalf("count after panic: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected rollback after panic, got %d rows", cnt)
	}
}
