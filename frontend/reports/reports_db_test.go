package reports

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/customcolumn"
	"stockroom/infrastructure/sqlite"
)

func openReportsTestDB(t *testing.T) (*sqlite.DB, int64) {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "reports-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	var userID int64
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`INSERT INTO users (username, password_hash, role) VALUES ('reporter', 'x', 'viewer') RETURNING id`).Scan(ctx, &userID)
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return db, userID
}

func TestLoadSettingsDefaults(t *testing.T) {
	db, userID := openReportsTestDB(t)
	s, err := LoadSettings(context.Background(), db, userID)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if len(s.VisibleColumns) != 0 || len(s.CustomColumns) != 0 || s.CustomColumns == nil {
		t.Fatalf("unexpected default settings: %+v", s)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	db, userID := openReportsTestDB(t)
	ctx := context.Background()

	in := Settings{
		VisibleColumns: []string{ColStockID, "cc_note"},
		ColumnOrder:    []string{"cc_note"},
		CustomColumns:  []customcolumn.Definition{customcolumn.NewStatic("cc_note", "Note", customcolumn.Text("checked"))},
	}
	if _, err := SaveSettings(ctx, db, audit.NewService(), userID, in); err != nil {
		t.Fatalf("save settings: %v", err)
	}
	got, err := LoadSettings(ctx, db, userID)
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if len(got.CustomColumns) != 1 || got.CustomColumns[0].Static.Value.String() != "checked" || got.ColumnOrder[0] != "cc_note" {
		t.Fatalf("unexpected settings: %+v", got)
	}

	in.VisibleColumns = []string{"missing"}
	if _, err := SaveSettings(ctx, db, audit.NewService(), userID, in); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestAddAndRemoveCustomColumns(t *testing.T) {
	db, userID := openReportsTestDB(t)
	ctx := context.Background()
	svc := audit.NewService()

	if _, err := SaveSettings(ctx, db, svc, userID, Settings{VisibleColumns: []string{ColStockID}}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	s, base, err := AddCustomColumn(ctx, db, svc, userID, customcolumn.NewArithmetic("", "Gross", "price + taxAmount"))
	if err != nil {
		t.Fatalf("add column: %v", err)
	}
	if !strings.HasPrefix(base.ID, "cc_") || len(base.ID) != len("cc_")+12 {
		t.Fatalf("unexpected generated id %q", base.ID)
	}
	if len(s.VisibleColumns) != 2 || s.VisibleColumns[1] != base.ID {
		t.Fatalf("expected new column to be visible, got %+v", s.VisibleColumns)
	}

	_, derived, err := AddCustomColumn(ctx, db, svc, userID, customcolumn.NewArithmetic("cc_double", "Double", base.ID+" * 2"))
	if err != nil {
		t.Fatalf("add derived column: %v", err)
	}

	cyclic := customcolumn.NewArithmetic(base.ID, "Gross", derived.ID+" + 1")
	var cycle *customcolumn.CycleError
	if _, _, err := AddCustomColumn(ctx, db, svc, userID, cyclic); !errors.As(err, &cycle) {
		t.Fatalf("expected cycle error, got %v", err)
	}

	if _, err := RemoveCustomColumn(ctx, db, svc, userID, base.ID); !errors.Is(err, customcolumn.ErrColumnReferenced) {
		t.Fatalf("expected ErrColumnReferenced, got %v", err)
	}
	if _, err := RemoveCustomColumn(ctx, db, svc, userID, derived.ID); err != nil {
		t.Fatalf("remove derived: %v", err)
	}
	s, err = RemoveCustomColumn(ctx, db, svc, userID, base.ID)
	if err != nil {
		t.Fatalf("remove base: %v", err)
	}
	if len(s.CustomColumns) != 0 || len(s.VisibleColumns) != 1 {
		t.Fatalf("expected columns removed, got %+v", s)
	}
	if _, err := RemoveCustomColumn(ctx, db, svc, userID, "cc_missing"); !errors.Is(err, customcolumn.ErrColumnNotFound) {
		t.Fatalf("expected ErrColumnNotFound, got %v", err)
	}
}

func TestRecordExportRun(t *testing.T) {
	db, userID := openReportsTestDB(t)
	ctx := context.Background()

	id, err := recordExportRun(ctx, db, userID, "xlsx", 12, map[string]string{"mode": ModeBatch})
	if err != nil {
		t.Fatalf("record export run: %v", err)
	}

	var format, filters string
	var rows int
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT format, row_count, filters_json FROM export_runs WHERE id = ?`, id).Scan(ctx, &format, &rows, &filters)
	})
	if err != nil {
		t.Fatalf("load export run: %v", err)
	}
	if format != "xlsx" || rows != 12 || filters != `{"mode":"batch"}` {
		t.Fatalf("unexpected export run: %s %d %s", format, rows, filters)
	}
}

func TestRecordExportRunFailureReturnsNoID(t *testing.T) {
	db, userID := openReportsTestDB(t)
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `DROP TABLE export_runs`)
		return err
	})
	if err != nil {
		t.Fatalf("drop export_runs: %v", err)
	}

	id, err := recordExportRun(ctx, db, userID, "csv", 1, map[string]string{})
	if err == nil {
		t.Fatalf("expected insert to fail")
	}
	if id != "" {
		t.Fatalf("expected no run id on failure, got %q", id)
	}
}
