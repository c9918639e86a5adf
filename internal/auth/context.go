package auth

import (
	"context"

	"github.com/Anuragsahu418/Educhat/internal/store"
)

type contextKey string

const userKey contextKey = "user"

func WithUser(ctx context.Context, user store.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (store.User, bool) {
	user, ok := ctx.Value(userKey).(store.User)

	return user, ok
}
