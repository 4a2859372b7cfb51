package auditlogs

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/uptrace/bun"

	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/audit"
	"stockroom/infrastructure/sqlite"
)

// ListHandler returns audit entries, newest first. Query: entity, entity_id,
// user_id, limit.
func ListHandler(db *sqlite.DB, auditSvc *audit.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filterFromQuery(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		var entries []audit.Entry
		err = db.WithReadTx(r.Context(), func(ctx context.Context, tx bun.Tx) error {
			var err error
			entries, err = auditSvc.List(ctx, tx, f)
			return err
		})
		if err != nil {
			slog.Error("audit logs: list failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load audit logs")
			return
		}
		respond.JSON(w, http.StatusOK, entries)
	}
}

func filterFromQuery(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	f := audit.Filter{
		EntityType: strings.TrimSpace(q.Get("entity")),
		EntityID:   strings.TrimSpace(q.Get("entity_id")),
	}
	userID, err := respond.QueryID(r, "user_id")
	if err != nil {
		return audit.Filter{}, err
	}
	f.UserID = userID
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return audit.Filter{}, errInvalidLimit
		}
		f.Limit = limit
	}
	return f, nil
}
