package invoices

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

const selectInvoices = `
SELECT i.id, i.invoice_no, i.invoice_date, i.vendor, COALESCE(i.budget_id, 0) AS budget_id,
       COALESCE(b.name, '') AS budget_name, i.total,
       (SELECT COUNT(1) FROM stock_units su WHERE su.invoice_id = i.id) AS unit_count
FROM invoices i
LEFT JOIN budgets b ON b.id = i.budget_id`

func List(ctx context.Context, db *sqlite.DB, f Filter) ([]InvoiceView, error) {
	rows := make([]InvoiceView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		where := make([]string, 0, 2)
		args := make([]any, 0, 2)
		if f.BudgetID > 0 {
			where = append(where, "i.budget_id = ?")
			args = append(args, f.BudgetID)
		}
		if v := strings.TrimSpace(f.Vendor); v != "" {
			where = append(where, "i.vendor LIKE ?")
			args = append(args, "%"+v+"%")
		}
		q := selectInvoices
		if len(where) > 0 {
			q += " WHERE " + strings.Join(where, " AND ")
		}
		return tx.NewRaw(q+" ORDER BY i.invoice_date DESC, i.id DESC", args...).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Date = rows[i].InvoiceDate.Format(dateLayout)
	}
	return rows, nil
}

func Get(ctx context.Context, db *sqlite.DB, id int64) (InvoiceView, error) {
	var view InvoiceView
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		view, err = get(ctx, tx, id)
		return err
	})
	return view, err
}

func get(ctx context.Context, tx bun.Tx, id int64) (InvoiceView, error) {
	var view InvoiceView
	err := tx.NewRaw(selectInvoices+" WHERE i.id = ?", id).Scan(ctx, &view)
	if errors.Is(err, sql.ErrNoRows) {
		return InvoiceView{}, ErrNotFound
	}
	if err != nil {
		return InvoiceView{}, err
	}
	view.Date = view.InvoiceDate.Format(dateLayout)
	return view, nil
}

func Create(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, in Input) (InvoiceView, error) {
	in.InvoiceNo = strings.TrimSpace(in.InvoiceNo)
	in.Vendor = strings.TrimSpace(in.Vendor)
	if in.InvoiceNo == "" {
		return InvoiceView{}, ErrInvoiceNoRequired
	}
	if in.Vendor == "" {
		return InvoiceView{}, ErrVendorRequired
	}
	date, err := time.Parse(dateLayout, strings.TrimSpace(in.InvoiceDate))
	if err != nil {
		return InvoiceView{}, ErrInvalidDate
	}
	if in.Total.IsNegative() {
		return InvoiceView{}, ErrNegativeTotal
	}

	invoice := models.Invoice{
		InvoiceNo:   in.InvoiceNo,
		InvoiceDate: date,
		Vendor:      in.Vendor,
		BudgetID:    in.BudgetID,
		Total:       in.Total,
		CreatedBy:   actorID,
	}
	var created InvoiceView
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&invoice).Returning("id").Exec(ctx); err != nil {
			switch {
			case sqlite.IsUniqueViolation(err):
				return ErrInvoiceExists
			case sqlite.IsForeignKeyViolation(err):
				return ErrUnknownBudget
			}
			return err
		}
		var err error
		created, err = get(ctx, tx, invoice.ID)
		if err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "invoice.create", audit.EntityInvoice, invoice.ID, nil, created)
	})
	return created, err
}

// Delete removes an invoice that has no stock units.
func Delete(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := get(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Invoice)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			if sqlite.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, "invoice.delete", audit.EntityInvoice, id, before, nil)
	})
}
