package ctxkeys

import (
	"context"

	"github.com/krkdev/contacts-api/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey        contextKey = "user"
	SessionHashKey contextKey = "session_hash"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

// SessionHash is the lookup key of the session that authenticated the request.
func SessionHash(ctx context.Context) string {
	hash, _ := ctx.Value(SessionHashKey).(string)
	return hash
}

func WithSessionHash(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, SessionHashKey, hash)
}
