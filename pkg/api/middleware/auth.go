package middleware

import (
	"log/slog"
	"net/http"

	"pizza-hq/pizzeria/pkg/auth"
	"pizza-hq/pizzeria/pkg/telemetry/logging"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthMiddleware attaches the claims of a valid bearer token to the request
// context. Requests without a token, or with an invalid one, continue
// anonymously; RequireAuth rejects them where authentication is needed.
func AuthMiddleware(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := metrics.BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := v.Verify(token)
			if err != nil {
				slog.DebugContext(r.Context(), "bearer token rejected", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithClaims(r.Context(), claims)
			ctx = logging.WithUser(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth answers 401 {"message":"unauthorized"} unless the request
// carries verified claims.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClaims(r.Context()) == nil {
			WriteMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
