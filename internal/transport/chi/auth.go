package chi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/tardis-search/internal/domain"
	"github.com/kailas-cloud/tardis-search/internal/logger"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

type principalKey struct{}

// ContextWithPrincipal stores the authenticated principal in the context.
func ContextWithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the request principal, or domain.Anonymous.
func PrincipalFromContext(ctx context.Context) domain.Principal {
	if p, ok := ctx.Value(principalKey{}).(domain.Principal); ok {
		return p
	}
	return domain.Anonymous
}

// BearerAuthMiddleware maps Bearer tokens to principals.
// Requests without an Authorization header run as the anonymous principal.
// A malformed header or unknown token is rejected with 401.
// If tokens is empty, authentication is disabled and every request is anonymous.
func BearerAuthMiddleware(tokens map[string]string) func(http.Handler) http.Handler {
	valid := make(map[string]string, len(tokens))
	for token, principal := range tokens {
		if token != "" && principal != "" {
			valid[token] = principal
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, every request is anonymous
		if len(valid) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				next.ServeHTTP(w, r)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized,
					ErrorResponseCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			principal, ok := valid[auth[len(bearerPrefix):]]
			if !ok {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid token")
				return
			}

			ctx := ContextWithPrincipal(r.Context(), domain.Principal{ID: principal})
			ctx = logger.With(ctx, zap.String("principal", principal))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
