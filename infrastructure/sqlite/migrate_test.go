package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"
)

func TestApplyEmbeddedMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "embedded.db")
	db, err := OpenDB(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply embedded migrations: %v", err)
	}

	for _, table := range []string{"users", "stock_units", "invoices", "report_settings", "export_runs", "role_privileges"} {
		var count int64
		err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
			return tx.NewRaw(
				`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
			).Scan(ctx, &count)
		})
		if err != nil {
			t.Fatalf("query sqlite_master: %v", err)
		}
		if count != 1 {
			t.Fatalf("expected %s table after embedded migrations, got %d", table, count)
		}
	}
}

func TestApplyMigrationsSkipsApplied(t *testing.T) {
	dir := t.TempDir()
	migration := "CREATE TABLE widgets (id INTEGER PRIMARY KEY);\nINSERT INTO widgets (id) VALUES (1);\n"
	if err := os.WriteFile(filepath.Join(dir, "0001_widgets.sql"), []byte(migration), 0o600); err != nil {
		t.Fatalf("write migration: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600); err != nil {
		t.Fatalf("write notes: %v", err)
	}

	db, err := OpenDB(filepath.Join(t.TempDir(), "dir.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for i := 0; i < 2; i++ {
		if err := ApplyMigrations(context.Background(), db, dir); err != nil {
			t.Fatalf("apply migrations run %d: %v", i+1, err)
		}
	}

	var widgets, recorded int
	err = db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewRaw(`SELECT COUNT(*) FROM widgets`).Scan(ctx, &widgets); err != nil {
			return err
		}
		return tx.NewRaw(`SELECT COUNT(*) FROM schema_migrations`).Scan(ctx, &recorded)
	})
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if widgets != 1 || recorded != 1 {
		t.Fatalf("expected single application, widgets=%d recorded=%d", widgets, recorded)
	}
}
