package help

import (
	"net/http"

	sessioncontext "stockroom/frontend/shared/context"
	"stockroom/frontend/shared/html"
	"stockroom/frontend/shared/nav"
	"stockroom/infrastructure/rbac"
)

func HelpPageQueryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessioncontext.GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		data := PageData{
			IsAdmin:  session.User.Role == rbac.RoleAdmin,
			CanEdit:  session.User.Role == rbac.RoleAdmin || session.User.Role == rbac.RoleStorekeeper,
			Username: session.User.Username,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page := html.Layout("Help", nav.BuildTopNavData(session), HelpPage(data))
		if err := page.Render(r.Context(), w); err != nil {
			http.Error(w, "failed to render help page", http.StatusInternalServerError)
			return
		}
	}
}
