package auth

import (
	"context"
	"net/http"
	"strings"

	"chatline/internal/api/httpx"
	"chatline/pkg/jwt"
)

type contextKey int

const userIDKey contextKey = iota

// UserID returns the authenticated user's ID from the request context, or ""
// if the request did not pass through Middleware.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID is exported for tests that exercise handlers without the full
// middleware chain.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Middleware validates the Bearer token and injects the user ID into the
// request context. An unauthenticated caller is rejected distinctly from any
// empty-result response the handlers may produce.
func Middleware(tokens *jwt.JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			raw := strings.TrimPrefix(header, "Bearer ")
			claims, err := tokens.ValidateToken(raw)
			if err != nil {
				httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}
