package exports

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	sessioncontext "stockroom/frontend/shared/context"
	"stockroom/frontend/shared/respond"
	"stockroom/infrastructure/rbac"
	"stockroom/infrastructure/sqlite"
)

// ListRunsHandler lists report downloads. Admins see everyone's runs and may
// pass ?user_id; other roles only see their own.
func ListRunsHandler(db *sqlite.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		f := Filter{Format: r.URL.Query().Get("format"), UserID: session.UserID}
		if session.User.Role == rbac.RoleAdmin {
			userID, err := respond.QueryID(r, "user_id")
			if err != nil {
				respond.Error(w, http.StatusBadRequest, err.Error())
				return
			}
			f.UserID = userID
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				respond.Error(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			f.Limit = n
		}

		runs, err := ListRuns(r.Context(), db, f)
		if err != nil {
			slog.Error("exports: list runs failed", slog.Any("err", err))
			respond.Error(w, http.StatusInternalServerError, "failed to load export history")
			return
		}
		respond.JSON(w, http.StatusOK, runs)
	}
}
