// internal/auth/middleware.go
//
// Admin route guard.

package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type ctxKey struct{}

// FromContext returns the verified admin claims, or nil outside
// guarded routes.
func FromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}

// Middleware rejects requests without a valid admin token.  The
// cookie is checked first, then the Authorization header.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
					token = strings.TrimPrefix(h, "Bearer ")
				}
			}
			if token == "" {
				unauthorized(w, "Unauthorized")
				return
			}

			claims, err := VerifyToken(secret, token)
			if err != nil {
				zap.S().Warnw("admin token rejected", "path", r.URL.Path)
				unauthorized(w, "Invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
