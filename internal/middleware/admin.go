package middleware

import (
	"context"
	"net/http"
	"strings"

	"barbershop-backend/internal/auth"
	"barbershop-backend/internal/models"
	"barbershop-backend/internal/transport"
)

const AccessCookie = "barber_access"

type adminKey struct{}

// AdminAuth accepts an access token from the cookie or a bearer header.
// Wrong and missing credentials get the same response.
func AdminAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "admin auth not configured", nil)
				return
			}

			token := bearerToken(r)
			if token == "" {
				if cookie, err := r.Cookie(AccessCookie); err == nil {
					token = cookie.Value
				}
			}
			if token != "" {
				claims, err := manager.ParseType(token, auth.TokenAccess)
				if err == nil && claims.Role == models.UserRoleAdmin {
					ctx := context.WithValue(r.Context(), adminKey{}, claims.Subject)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		})
	}
}

func AdminFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(adminKey{}).(string); ok {
		return v
	}
	return ""
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
