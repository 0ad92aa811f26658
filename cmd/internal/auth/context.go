package auth

import (
	"context"

	"articles/cmd/internal/auth/token"
)

type claimsKey struct{}

// WithClaims attaches validated claims to the request context. Only the access
// guard writes this value; handlers read the identity from context and never
// re-derive it.
func WithClaims(ctx context.Context, c token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// ClaimsFrom returns the claims attached by the access guard, if any.
func ClaimsFrom(ctx context.Context) (token.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(token.Claims)
	return c, ok
}
