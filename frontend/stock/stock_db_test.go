package stock

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockroom/frontend/masters"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/batchgroup"
	"stockroom/infrastructure/rangespec"
	"stockroom/infrastructure/sqlite"
)

func openStockTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "stock-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO locations (name) VALUES ('Lab'), ('Store')`)
		return err
	})
	if err != nil {
		t.Fatalf("seed locations: %v", err)
	}
	return db
}

func lookupID(t *testing.T, db *sqlite.DB, table, name string) int64 {
	t.Helper()
	var id int64
	err := db.WithReadTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw("SELECT id FROM "+table+" WHERE name = ?", name).Scan(ctx, &id)
	})
	if err != nil {
		t.Fatalf("lookup %s %q: %v", table, name, err)
	}
	return id
}

func printerBatch(t *testing.T, db *sqlite.DB, mappings ...rangespec.Mapping) batchgroup.ProductInput {
	t.Helper()
	quantity := 0
	for _, m := range mappings {
		quantity += len(rangespec.Parse(m.Range))
	}
	return batchgroup.ProductInput{
		BatchFields: batchgroup.BatchFields{
			StockName:   "Laser printer",
			Description: "Mono A4",
			Price:       decimal.RequireFromString("250.00"),
			TaxAmount:   decimal.RequireFromString("45.00"),
			CategoryID:  lookupID(t, db, "categories", "Electronics"),
			StatusID:    lookupID(t, db, "statuses", "In use"),
			VolumeNo:    "V1",
			PageNo:      "P2",
		},
		Quantity:              quantity,
		LocationRangeMappings: mappings,
	}
}

func TestRegisterBatchAndRegroup(t *testing.T) {
	db := openStockTestDB(t)
	ctx := context.Background()

	in := printerBatch(t, db,
		rangespec.Mapping{Range: "1-3", Location: "lab"},
		rangespec.Mapping{Range: "4-5", Location: "Store"},
	)
	result, err := RegisterBatch(ctx, db, audit.NewService(), 1, in)
	if err != nil {
		t.Fatalf("register batch: %v", err)
	}
	if result.Created != 5 || len(result.UnitIDs) != 5 || result.StockIDs[0] != "V1-P2-1" {
		t.Fatalf("unexpected result: %+v", result)
	}

	units, err := ListUnits(ctx, db, Filter{})
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	if len(units) != 5 || units[0].LocationName != "Lab" || units[4].LocationName != "Store" || units[0].StatusName != "In use" {
		t.Fatalf("unexpected units: %+v", units)
	}

	products, err := Batches(ctx, db, 0)
	if err != nil {
		t.Fatalf("batches: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected one product, got %+v", products)
	}
	p := products[0]
	if p.Quantity != 5 || p.StockID != "V1-P2-[1-5]" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if len(p.LocationRangeMappings) != 2 || p.LocationRangeMappings[0] != (rangespec.Mapping{Range: "1-3", Location: "Lab"}) ||
		p.LocationRangeMappings[1] != (rangespec.Mapping{Range: "4-5", Location: "Store"}) {
		t.Fatalf("unexpected mappings: %+v", p.LocationRangeMappings)
	}

	var auditRows int
	err = db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT COUNT(1) FROM audit_logs WHERE entity_type = ?`, audit.EntityStockBatch).Scan(ctx, &auditRows)
	})
	if err != nil {
		t.Fatalf("count audit rows: %v", err)
	}
	if auditRows != 1 {
		t.Fatalf("expected one batch audit row, got %d", auditRows)
	}
}

func TestRegisterBatchRejections(t *testing.T) {
	db := openStockTestDB(t)
	ctx := context.Background()

	first := printerBatch(t, db, rangespec.Mapping{Range: "1-2", Location: "Lab"})
	if _, err := RegisterBatch(ctx, db, audit.NewService(), 1, first); err != nil {
		t.Fatalf("register first batch: %v", err)
	}

	unknownLocation := printerBatch(t, db, rangespec.Mapping{Range: "1-2", Location: "Basement"})
	unknownLocation.PageNo = "P9"

	mismatch := printerBatch(t, db, rangespec.Mapping{Range: "1-2", Location: "Lab"})
	mismatch.PageNo = "P9"
	mismatch.Quantity = 3

	overlap := printerBatch(t, db,
		rangespec.Mapping{Range: "1-2", Location: "Lab"},
		rangespec.Mapping{Range: "2-3", Location: "Store"},
	)
	overlap.PageNo = "P9"

	cases := []struct {
		name string
		in   batchgroup.ProductInput
		want error
	}{
		{name: "unknown location", in: unknownLocation, want: masters.ErrUnknownLocation},
		{name: "assigned mismatch", in: mismatch, want: batchgroup.ErrAssignedMismatch},
		{name: "overlapping ranges", in: overlap, want: ErrStockIDExists},
		{name: "already registered", in: first, want: ErrStockIDExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := RegisterBatch(ctx, db, audit.NewService(), 1, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	units, err := ListUnits(ctx, db, Filter{})
	if err != nil {
		t.Fatalf("list units: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected rejected batches to insert nothing, got %d units", len(units))
	}
}

func TestMoveSetStatusAndDelete(t *testing.T) {
	db := openStockTestDB(t)
	ctx := context.Background()
	svc := audit.NewService()

	result, err := RegisterBatch(ctx, db, svc, 1, printerBatch(t, db, rangespec.Mapping{Range: "1", Location: "Lab"}))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	id := result.UnitIDs[0]

	moved, err := MoveUnit(ctx, db, svc, 1, id, "STORE")
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.LocationName != "Store" {
		t.Fatalf("expected Store, got %q", moved.LocationName)
	}
	if _, err := MoveUnit(ctx, db, svc, 1, id, "Attic"); !errors.Is(err, masters.ErrUnknownLocation) {
		t.Fatalf("expected ErrUnknownLocation, got %v", err)
	}

	repairID := lookupID(t, db, "statuses", "Under repair")
	updated, err := SetStatus(ctx, db, svc, 1, id, repairID)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.StatusName != "Under repair" {
		t.Fatalf("expected Under repair, got %q", updated.StatusName)
	}
	if _, err := SetStatus(ctx, db, svc, 1, id, 9999); !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}

	if err := DeleteUnit(ctx, db, svc, 1, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := DeleteUnit(ctx, db, svc, 1, id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUnitsFilters(t *testing.T) {
	db := openStockTestDB(t)
	ctx := context.Background()

	in := printerBatch(t, db,
		rangespec.Mapping{Range: "1", Location: "Lab"},
		rangespec.Mapping{Range: "2", Location: "Store"},
	)
	if _, err := RegisterBatch(ctx, db, audit.NewService(), 1, in); err != nil {
		t.Fatalf("register: %v", err)
	}

	storeID := lookupID(t, db, "locations", "Store")
	inStore, err := ListUnits(ctx, db, Filter{LocationID: storeID})
	if err != nil {
		t.Fatalf("list by location: %v", err)
	}
	if len(inStore) != 1 || inStore[0].StockID != "V1-P2-2" {
		t.Fatalf("unexpected location filter result: %+v", inStore)
	}

	searched, err := ListUnits(ctx, db, Filter{Search: "V1-P2-1"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(searched) != 1 || searched[0].SerialNo != 1 {
		t.Fatalf("unexpected search result: %+v", searched)
	}
}
