package middleware

import (
	"context"

	"pizza-hq/pizzeria/pkg/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ClaimsKey stores the verified token claims.
const ClaimsKey contextKey = "claims"

// WithClaims returns ctx carrying the caller's verified claims.
func WithClaims(ctx context.Context, c *auth.Claims) context.Context {
	return context.WithValue(ctx, ClaimsKey, c)
}

// GetClaims returns the caller's verified claims, or nil for anonymous
// requests.
func GetClaims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(ClaimsKey).(*auth.Claims)
	return c
}
