package masters

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
)

type budgetRow struct {
	ID            int64  `bun:"id"`
	Name          string `bun:"name"`
	FinancialYear string `bun:"financial_year"`
	Amount        string `bun:"amount"`
}

func (b budgetRow) master() (Master, error) {
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return Master{}, fmt.Errorf("budget %d amount: %w", b.ID, err)
	}
	return Master{ID: b.ID, Name: b.Name, FinancialYear: b.FinancialYear, Amount: &amount}, nil
}

func List(ctx context.Context, db *sqlite.DB, kind Kind) ([]Master, error) {
	out := make([]Master, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		out, err = list(ctx, tx, kind, "")
		return err
	})
	return out, err
}

func list(ctx context.Context, tx bun.Tx, kind Kind, where string, args ...any) ([]Master, error) {
	if !kind.budget {
		rows := make([]Master, 0)
		q := "SELECT id, name FROM " + kind.table
		if where != "" {
			q += " WHERE " + where
		}
		err := tx.NewRaw(q+" ORDER BY name COLLATE NOCASE ASC", args...).Scan(ctx, &rows)
		return rows, err
	}

	rows := make([]budgetRow, 0)
	q := "SELECT id, name, financial_year, amount FROM budgets"
	if where != "" {
		q += " WHERE " + where
	}
	if err := tx.NewRaw(q+" ORDER BY financial_year DESC, name ASC", args...).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]Master, 0, len(rows))
	for _, r := range rows {
		m, err := r.master()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func get(ctx context.Context, tx bun.Tx, kind Kind, id int64) (Master, error) {
	rows, err := list(ctx, tx, kind, "id = ?", id)
	if err != nil {
		return Master{}, err
	}
	if len(rows) == 0 {
		return Master{}, ErrNotFound
	}
	return rows[0], nil
}

func Create(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, kind Kind, in Input) (Master, error) {
	in, err := kind.normalize(in)
	if err != nil {
		return Master{}, err
	}

	var created Master
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var id int64
		var err error
		if kind.budget {
			err = tx.NewRaw(`INSERT INTO budgets (name, financial_year, amount) VALUES (?, ?, ?) RETURNING id`,
				in.Name, in.FinancialYear, in.Amount.String()).Scan(ctx, &id)
		} else {
			err = tx.NewRaw("INSERT INTO "+kind.table+" (name) VALUES (?) RETURNING id", in.Name).Scan(ctx, &id)
		}
		if err != nil {
			if sqlite.IsUniqueViolation(err) {
				return ErrNameExists
			}
			return err
		}
		created, err = get(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, kind.entity+".create", kind.entity, id, nil, created)
	})
	return created, err
}

// Update renames a row; budgets also take financial year and amount.
func Update(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, kind Kind, id int64, in Input) (Master, error) {
	in, err := kind.normalize(in)
	if err != nil {
		return Master{}, err
	}

	var updated Master
	err = db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := get(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if kind.budget {
			_, err = tx.ExecContext(ctx, `UPDATE budgets SET name = ?, financial_year = ?, amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
				in.Name, in.FinancialYear, in.Amount.String(), id)
		} else {
			_, err = tx.ExecContext(ctx, "UPDATE "+kind.table+" SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", in.Name, id)
		}
		if err != nil {
			if sqlite.IsUniqueViolation(err) {
				return ErrNameExists
			}
			return err
		}
		updated, err = get(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, kind.entity+".update", kind.entity, id, before, updated)
	})
	return updated, err
}

// Delete removes a row unless stock or invoices still reference it.
func Delete(ctx context.Context, db *sqlite.DB, auditSvc *audit.Service, actorID int64, kind Kind, id int64) error {
	return db.WithWriteTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		before, err := get(ctx, tx, kind, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+kind.table+" WHERE id = ?", id); err != nil {
			if sqlite.IsForeignKeyViolation(err) {
				return ErrInUse
			}
			return err
		}
		return auditSvc.WriteID(ctx, tx, actorID, kind.entity+".delete", kind.entity, id, before, nil)
	})
}

// LocationIDs resolves location names case-insensitively. Every name must
// exist; the first unknown one is reported with ErrUnknownLocation.
func LocationIDs(ctx context.Context, tx bun.Tx, names []string) (map[string]int64, error) {
	out := make(map[string]int64, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, done := out[key]; done {
			continue
		}
		var id int64
		err := tx.NewRaw(`SELECT id FROM locations WHERE name = ? COLLATE NOCASE LIMIT 1`, strings.TrimSpace(name)).Scan(ctx, &id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLocation, name)
		}
		if err != nil {
			return nil, err
		}
		out[key] = id
	}
	return out, nil
}
