package auditlogs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
)

func TestListHandler(t *testing.T) {
	db, err := sqlite.OpenDB(filepath.Join(t.TempDir(), "audit-logs-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := sqlite.ApplyEmbeddedMigrations(context.Background(), db); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	svc := audit.NewService()
	err = db.WithWriteTx(context.Background(), func(ctx context.Context, tx bun.Tx) error {
		if err := svc.WriteID(ctx, tx, 1, "location.create", audit.EntityLocation, 5, nil, map[string]string{"name": "Lab"}); err != nil {
			return err
		}
		return svc.WriteID(ctx, tx, 1, "invoice.create", audit.EntityInvoice, 9, nil, map[string]string{"invoiceNo": "A"})
	})
	if err != nil {
		t.Fatalf("seed audit rows: %v", err)
	}

	cases := []struct {
		name   string
		query  string
		status int
		count  int
	}{
		{name: "all", query: "", status: http.StatusOK, count: 2},
		{name: "by entity", query: "?entity=location", status: http.StatusOK, count: 1},
		{name: "limited", query: "?limit=1", status: http.StatusOK, count: 1},
		{name: "bad limit", query: "?limit=zero", status: http.StatusBadRequest},
		{name: "bad user", query: "?user_id=-1", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ListHandler(db, svc)(rec, httptest.NewRequest(http.MethodGet, "/api/audit-logs"+tc.query, nil))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.status != http.StatusOK {
				return
			}
			var entries []audit.Entry
			if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(entries) != tc.count {
				t.Fatalf("expected %d entries, got %d", tc.count, len(entries))
			}
		})
	}
}
