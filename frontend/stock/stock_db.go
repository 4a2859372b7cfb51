package stock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"

	"stockroom/frontend/masters"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/batchgroup"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

const selectUnits = `
SELECT su.id, su.stock_id, su.stock_name, su.description, su.price, su.tax_amount,
       COALESCE(su.category_id, 0) AS category_id, COALESCE(c.name, '') AS category_name,
       COALESCE(su.status_id, 0) AS status_id, COALESCE(st.name, '') AS status_name,
       su.location_id, l.name AS location_name,
       COALESCE(su.invoice_id, 0) AS invoice_id, COALESCE(i.invoice_no, '') AS invoice_no,
       COALESCE(strftime('%Y-%m-%d', i.invoice_date), '') AS invoice_date,
       COALESCE(i.vendor, '') AS vendor, COALESCE(b.name, '') AS budget_name,
       su.volume_no, su.page_no, su.serial_no, su.staff, su.remarks
FROM stock_units su
JOIN locations l ON l.id = su.location_id
LEFT JOIN categories c ON c.id = su.category_id
LEFT JOIN statuses st ON st.id = su.status_id
LEFT JOIN invoices i ON i.id = su.invoice_id
LEFT JOIN budgets b ON b.id = i.budget_id`

func ListUnits(ctx context.Context, db *sqlite.DB, f Filter) ([]UnitView, error) {
	var rows []UnitView
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		rows, err = listUnits(ctx, tx, f)
		return err
	})
	return rows, err
}

func listUnits(ctx context.Context, tx bun.Tx, f Filter) ([]UnitView, error) {
	where := make([]string, 0, 6)
	args := make([]any, 0, 6)
	if len(f.IDs) > 0 {
		where = append(where, "su.id IN (?)")
		args = append(args, bun.In(f.IDs))
	}
	for _, c := range []struct {
		column string
		id     int64
	}{
		{"su.invoice_id", f.InvoiceID},
		{"su.location_id", f.LocationID},
		{"su.status_id", f.StatusID},
		{"su.category_id", f.CategoryID},
		{"i.budget_id", f.BudgetID},
	} {
		if c.id > 0 {
			where = append(where, c.column+" = ?")
			args = append(args, c.id)
		}
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(su.stock_name LIKE ? OR su.stock_id LIKE ? OR su.description LIKE ?)")
		like := "%" + s + "%"
		args = append(args, like, like, like)
	}

	q := selectUnits
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	rows := make([]UnitView, 0)
	err := tx.NewRaw(q+" ORDER BY su.id ASC", args...).Scan(ctx, &rows)
	return rows, err
}

func getUnit(ctx context.Context, tx bun.Tx, id int64) (UnitView, error) {
	rows, err := listUnits(ctx, tx, Filter{IDs: []int64{id}})
	if err != nil {
		return UnitView{}, err
	}
	if len(rows) == 0 {
		return UnitView{}, ErrNotFound
	}
	return rows[0], nil
}

// Batches rebuilds the registered batches of an invoice, or of all stock
// when invoiceID is 0.
func Batches(ctx context.Context, db *sqlite.DB, invoiceID int64) ([]batchgroup.Product, error) {
	units, err := ListUnits(ctx, db, Filter{InvoiceID: invoiceID})
	if err != nil {
		return nil, err
	}
	return batchgroup.Group(BatchUnits(units), nil), nil
}

// BatchUnits converts listed units to grouping input.
func BatchUnits(units []UnitView) []batchgroup.Unit {
	out := make([]batchgroup.Unit, 0, len(units))
	for _, u := range units {
		out = append(out, u.BatchUnit())
	}
	return out
}

// RegisterBatch expands a batch into one row per unit and inserts them all
// in one transaction.
func RegisterBatch(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, in batchgroup.ProductInput) (BatchResult, error) {
	drafts, err := batchgroup.Expand(in)
	if err != nil {
		return BatchResult{}, err
	}

	names := make([]string, 0, len(in.LocationRangeMappings))
	stockIDs := make([]string, 0, len(drafts))
	seen := make(map[string]bool, len(drafts))
	for _, d := range drafts {
		names = append(names, d.LocationName)
		if seen[d.StockID] {
			return BatchResult{}, fmt.Errorf("%w: %s", ErrStockIDExists, d.StockID)
		}
		seen[d.StockID] = true
		stockIDs = append(stockIDs, d.StockID)
	}

	result := BatchResult{UnitIDs: make([]int64, 0, len(drafts)), StockIDs: stockIDs}
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		locations, err := masters.LocationIDs(ctx, tx, names)
		if err != nil {
			return err
		}

		existing := make([]string, 0)
		if err := tx.NewRaw(`SELECT stock_id FROM stock_units WHERE stock_id IN (?) ORDER BY stock_id`, bun.In(stockIDs)).Scan(ctx, &existing); err != nil {
			return err
		}
		if len(existing) > 0 {
			return fmt.Errorf("%w: %s", ErrStockIDExists, strings.Join(existing, ", "))
		}

		for _, d := range drafts {
			unit := models.StockUnit{
				StockName:   d.StockName,
				Description: strings.TrimSpace(d.Description),
				Price:       d.Price,
				TaxAmount:   d.TaxAmount,
				CategoryID:  d.CategoryID,
				StatusID:    d.StatusID,
				LocationID:  locations[strings.ToLower(d.LocationName)],
				InvoiceID:   d.InvoiceID,
				VolumeNo:    d.VolumeNo,
				PageNo:      d.PageNo,
				SerialNo:    d.SerialNo,
				StockID:     d.StockID,
				Staff:       strings.TrimSpace(d.Staff),
				Remarks:     strings.TrimSpace(d.Remarks),
				CreatedBy:   actorID,
			}
			if _, err := tx.NewInsert().Model(&unit).Returning("id").Exec(ctx); err != nil {
				switch {
				case sqlite.IsUniqueViolation(err):
					return fmt.Errorf("%w: %s", ErrStockIDExists, d.StockID)
				case sqlite.IsForeignKeyViolation(err):
					return ErrUnknownReference
				}
				return err
			}
			result.UnitIDs = append(result.UnitIDs, unit.ID)
		}
		result.Created = len(result.UnitIDs)

		batchID := fmt.Sprintf("%s-%s-[1-%d]", strings.TrimSpace(in.VolumeNo), strings.TrimSpace(in.PageNo), in.Quantity)
		return auditSvc.Write(ctx, tx, actorID, "stock.batch.create", audit.EntityStockBatch, batchID, nil, map[string]any{
			"batch":   in,
			"unitIds": result.UnitIDs,
		})
	})
	if err != nil {
		return BatchResult{}, err
	}
	return result, nil
}

// MoveUnit assigns a unit to the named location.
func MoveUnit(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id int64, location string) (UnitView, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return UnitView{}, ErrLocationRequired
	}
	var after UnitView
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		ids, err := masters.LocationIDs(ctx, tx, []string{location})
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*models.StockUnit)(nil)).
			Set("location_id = ?", ids[strings.ToLower(location)]).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		after, err = getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "stock.move", audit.EntityStockUnit, id,
			map[string]any{"location": before.LocationName}, map[string]any{"location": after.LocationName})
	})
	return after, err
}

func SetStatus(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id, statusID int64) (UnitView, error) {
	if statusID <= 0 {
		return UnitView{}, ErrStatusRequired
	}
	var after UnitView
	err := db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.NewUpdate().Model((*models.StockUnit)(nil)).
			Set("status_id = ?", statusID).
			Set("updated_at = CURRENT_TIMESTAMP").
			Where("id = ?", id).
			Exec(ctx); err != nil {
			if sqlite.IsForeignKeyViolation(err) {
				return ErrUnknownReference
			}
			return err
		}
		after, err = getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "stock.status", audit.EntityStockUnit, id,
			map[string]any{"status": before.StatusName}, map[string]any{"status": after.StatusName})
	})
	return after, err
}

func DeleteUnit(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := getUnit(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.StockUnit)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "stock.delete", audit.EntityStockUnit, id, before, nil)
	})
}

// isClientError reports errors caused by the submitted batch.
func isClientError(err error) bool {
	for _, target := range []error{
		batchgroup.ErrQuantityRequired,
		batchgroup.ErrQuantityTooLarge,
		batchgroup.ErrMappingsRequired,
		batchgroup.ErrLocationRequired,
		batchgroup.ErrAssignedMismatch,
		masters.ErrUnknownLocation,
		ErrUnknownReference,
		ErrLocationRequired,
		ErrStatusRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
