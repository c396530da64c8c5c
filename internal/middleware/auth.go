package middleware

import (
	"context"
	"net/http"
	"strings"

	"buyzo/internal/identity"

	"go.uber.org/zap"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthMiddleware validates session tokens against the identity provider and
// attaches the resolved identity to the request context
func AuthMiddleware(provider identity.Provider, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				respondWithError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				respondWithError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			ident, err := provider.Verify(parts[1])
			if err != nil {
				logger.Debug("Token verification failed", zap.Error(err))
				respondWithError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)

			logger.Debug("User authenticated",
				zap.String("uid", ident.UID),
				zap.String("email", ident.Email),
			)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity extracts the authenticated identity from the request context
func GetIdentity(ctx context.Context) (*identity.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(*identity.Identity)
	return ident, ok
}
