package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/sqlite"
)

func openAuditTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "audit-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

func TestWriteAndList(t *testing.T) {
	db := openAuditTestDB(t)
	svc := NewService()
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := svc.WriteID(ctx, tx, 1, "create", EntityLocation, 7, nil, map[string]string{"name": "Lab 1"}); err != nil {
			return err
		}
		return svc.WriteID(ctx, tx, 1, "rename", EntityLocation, 7, map[string]string{"name": "Lab 1"}, map[string]string{"name": "Lab A"})
	})
	if err != nil {
		t.Fatalf("write audit: %v", err)
	}

	var entries []Entry
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		entries, err = svc.List(ctx, tx, Filter{EntityType: EntityLocation, EntityID: "7"})
		return err
	})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Action != "rename" {
		t.Fatalf("expected newest first, got %q", entries[0].Action)
	}
	if string(entries[0].After) != `{"name":"Lab A"}` {
		t.Fatalf("unexpected after snapshot: %s", entries[0].After)
	}
	if entries[1].Before != nil {
		t.Fatalf("create entry should have no before snapshot, got %s", entries[1].Before)
	}
}

func TestWriteRollsBackWithCaller(t *testing.T) {
	db := openAuditTestDB(t)
	svc := NewService()
	ctx := context.Background()
	boom := errors.New("boom")

	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := svc.Write(ctx, tx, 1, "delete", EntityStockUnit, "V1-P1-1", map[string]int{"id": 1}, nil); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var count int
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(*) FROM audit_logs`).Scan(ctx, &count)
	})
	if err != nil {
		t.Fatalf("count audit: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected audit row to roll back, got %d", count)
	}
}
