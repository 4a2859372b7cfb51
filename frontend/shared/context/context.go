package context

import (
	"context"

	"stockroom/models"
)

type sessionKey struct{}

func NewContextWithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

func GetSessionFromContext(ctx context.Context) (models.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(models.Session)
	return s, ok
}

// UserID returns the signed-in user's id, or 0 outside an authenticated
// request.
func UserID(ctx context.Context) int64 {
	if s, ok := GetSessionFromContext(ctx); ok {
		return s.UserID
	}
	return 0
}
