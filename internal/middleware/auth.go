package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kostasdel/banking-backend/internal/api/httpx"
	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/models"
)

type ctxKey string

const (
	ctxCustomerIDKey ctxKey = "customer_id"
	ctxRoleKey       ctxKey = "role"
)

// CustomerID returns the authenticated customer's id, or "" on
// unauthenticated routes.
func CustomerID(ctx context.Context) string {
	v, _ := ctx.Value(ctxCustomerIDKey).(string)
	return v
}

func Role(ctx context.Context) string {
	v, _ := ctx.Value(ctxRoleKey).(string)
	return v
}

type AuthMiddleware struct {
	TM     *auth.TokenManager
	AppEnv string
}

func NewAuthMiddleware(tm *auth.TokenManager, appEnv string) *AuthMiddleware {
	return &AuthMiddleware{TM: tm, AppEnv: appEnv}
}

// Auth accepts Bearer <JWT access token>; in dev, Bearer dev-<id> or
// dev-<id>:<role> is a shortcut that skips token verification.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ah := r.Header.Get("Authorization")
		if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token", nil)
			return
		}
		token := strings.TrimSpace(ah[len("Bearer "):])

		if m.AppEnv == "dev" && strings.HasPrefix(token, "dev-") {
			id, role, _ := strings.Cut(strings.TrimPrefix(token, "dev-"), ":")
			if !models.ValidRole(role) {
				role = models.RoleCustomer
			}
			ctx := context.WithValue(r.Context(), ctxCustomerIDKey, id)
			ctx = context.WithValue(ctx, ctxRoleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		claims, isRefresh, err := m.TM.ParseAny(token)
		if err != nil || isRefresh {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "invalid access token", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ctxCustomerIDKey, claims.CustomerID)
		ctx = context.WithValue(ctx, ctxRoleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates administrative endpoints.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Role(r.Context()) != role {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "insufficient role", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
