package middleware

import (
	"context"
	"net/http"

	"buyzo/internal/domain"
	"buyzo/internal/identity"

	"go.uber.org/zap"
)

// RoleResolver derives the role for an authenticated identity. Roles are
// re-derived per request rather than trusted from a token so an admin grant
// or revocation takes effect immediately.
type RoleResolver interface {
	ResolveRole(ctx context.Context, ident *identity.Identity) domain.Role
}

// RequireAdmin ensures the authenticated user resolves to the admin role
func RequireAdmin(resolver RoleResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := GetIdentity(r.Context())
			if !ok {
				logger.Warn("Identity not found in context")
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			role := resolver.ResolveRole(r.Context(), ident)
			if role != domain.RoleAdmin {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("uid", ident.UID),
					zap.String("role", string(role)),
				)
				respondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
