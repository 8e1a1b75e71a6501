// Package middleware provides HTTP middlewares for authentication and logging.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/iamlokanath/imagehub/internal/models"
)

type ctxKey string

const userKey ctxKey = "user"

// UserResolver turns a bearer token into the user it belongs to.
type UserResolver interface {
	ResolveToken(ctx context.Context, token string) (models.User, error)
}

// BearerAuth enforces bearer-token authentication.
//
// It expects an "Authorization: Bearer <token>" header, resolves the token
// to a user via the given resolver, and stores the user in the request
// context for downstream handlers. Requests without a valid token get 401.
func BearerAuth(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			user, err := resolver.ResolveToken(r.Context(), strings.TrimPrefix(authz, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the authenticated user from the request context.
// The second return value is false when no user is present.
func GetUserFromContext(ctx context.Context) (models.User, bool) {
	val := ctx.Value(userKey)
	if u, ok := val.(models.User); ok {
		return u, true
	}
	return models.User{}, false
}
