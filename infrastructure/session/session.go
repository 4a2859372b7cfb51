// Package session builds the session cookie shared by login, logout and the
// auth middleware.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"
)

const CookieName = "X-Session-Token"

// DefaultTTL is used when no SESSION_TTL is configured.
const DefaultTTL = 12 * time.Hour

// SessionCookie returns the cookie carrying value. maxAge below zero clears it.
func SessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie in the browser.
func ClearCookie() *http.Cookie {
	return SessionCookie("", -1)
}

// Expiry returns the expiry instant for a session created now. A non-positive
// ttl falls back to DefaultTTL.
func Expiry(now time.Time, ttl time.Duration) time.Time {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return now.Add(ttl)
}

// NewToken returns a random 48 character hex token.
func NewToken() string {
	buf := make([]byte, 24)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
