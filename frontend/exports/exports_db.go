package exports

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/uptrace/bun"

	"stockroom/infrastructure/sqlite"
)

// ListRuns returns recorded exports, newest first.
func ListRuns(ctx context.Context, db *sqlite.DB, f Filter) ([]RunView, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows := make([]RunView, 0)
	err := db.WithReadTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		q := `
SELECT er.id, COALESCE(er.user_id, 0) AS user_id, COALESCE(u.username, '') AS username,
       er.format, er.row_count, er.filters_json,
       strftime('%Y-%m-%dT%H:%M:%SZ', er.created_at) AS created_at
FROM export_runs er
LEFT JOIN users u ON u.id = er.user_id`
		where := make([]string, 0, 2)
		args := make([]any, 0, 3)
		if f.UserID > 0 {
			where = append(where, "er.user_id = ?")
			args = append(args, f.UserID)
		}
		if format := strings.ToLower(strings.TrimSpace(f.Format)); format != "" {
			where = append(where, "er.format = ?")
			args = append(args, format)
		}
		if len(where) > 0 {
			q += " WHERE " + strings.Join(where, " AND ")
		}
		q += " ORDER BY er.rowid DESC LIMIT ?"
		args = append(args, limit)
		return tx.NewRaw(q, args...).Scan(ctx, &rows)
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if json.Valid([]byte(rows[i].RawFilter)) {
			rows[i].Filters = json.RawMessage(rows[i].RawFilter)
		} else {
			rows[i].Filters = json.RawMessage("{}")
		}
	}
	return rows, nil
}
