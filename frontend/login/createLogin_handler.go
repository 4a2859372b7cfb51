package login

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stockroom/infrastructure/cache"
	sessioncookie "stockroom/infrastructure/session"
	"stockroom/infrastructure/sqlite"
	"stockroom/models"
)

// LandingPath is where a successful login lands.
const LandingPath = "/reports"

// CreateLoginHandler authenticates the user and issues a session cookie.
func CreateLoginHandler(db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, ttl time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithError(w, r, "invalid form data")
			return
		}

		username := strings.TrimSpace(r.FormValue("username"))
		password := strings.TrimSpace(r.FormValue("password"))
		if username == "" || password == "" {
			redirectWithError(w, r, "username and password are required")
			return
		}

		user, err := authenticateUser(r.Context(), db, username, password)
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				redirectWithError(w, r, ErrInvalidCredentials.Error())
				return
			}
			slog.Error("login: authenticate failed", slog.String("username", username), slog.Any("err", err))
			redirectWithError(w, r, "authentication failed")
			return
		}

		session := newSession(user, ttl)
		if err := persistSession(r.Context(), db, session); err != nil {
			slog.Error("login: persist session failed", slog.Int64("user_id", user.ID), slog.Any("err", err))
			redirectWithError(w, r, "failed to create session")
			return
		}

		sessionCache.AddSession(session)
		userCache.Add(user.Username, user)

		http.SetCookie(w, sessioncookie.SessionCookie(session.ID, int(time.Until(session.ExpiresAt).Seconds())))
		http.Redirect(w, r, LandingPath, http.StatusSeeOther)
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/login?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func newSession(user models.User, ttl time.Duration) models.Session {
	return models.Session{
		ID:        sessioncookie.NewToken(),
		UserID:    user.ID,
		User:      user,
		UserRoles: []string{user.Role},
		ExpiresAt: sessioncookie.Expiry(time.Now(), ttl),
	}
}
