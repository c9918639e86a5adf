package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/auth"
	"github.com/Anuragsahu418/Educhat/internal/store"
)

const sessionCookieName = "jwt"

// AuthMiddleware resolves the jwt cookie to a full user record and puts it
// on the request context.
type AuthMiddleware struct {
	logger *zap.Logger
	tokens *auth.TokenIssuer
	users  store.UserStore
}

func NewAuthMiddleware(
	logger *zap.Logger,
	tokens *auth.TokenIssuer,
	users store.UserStore,
) *AuthMiddleware {
	return &AuthMiddleware{
		logger: logger,
		tokens: tokens,
		users:  users,
	}
}

func (m *AuthMiddleware) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "unauthorized: no token provided")
			return
		}

		userId, err := m.tokens.Verify(cookie.Value)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "unauthorized: invalid token")
			return
		}

		user, err := m.users.FindByID(r.Context(), userId)
		if err != nil {
			respondMessage(w, http.StatusUnauthorized, "unauthorized: user not found")
			return
		}

		ctx := auth.WithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
