// Package authctx propagates the authenticated principal's claims through
// a request context.
//
// The claims type is a generic parameter so the package stays free of any
// dependency on the token package; the auth middleware stores *token.Claims
// and handlers read them back with the same type:
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get[*token.Claims](ctx)
//	claims := authctx.MustGet[*token.Claims](ctx) // panics if missing
package authctx

import (
	"context"
	"errors"
)

// contextKey is unexported so no other package can collide with it.
type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims reports that a context carries no claims of the requested type.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores the principal's claims in the context.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get retrieves claims of type T. It returns false when the context carries
// no claims or claims of a different type.
func Get[T any](ctx context.Context) (T, bool) {
	val := ctx.Value(claimsKey)
	if val == nil {
		var zero T
		return zero, false
	}
	claims, ok := val.(T)
	return claims, ok
}

// MustGet retrieves claims of type T and panics when they are absent. Only
// call it on routes behind the auth middleware, which guarantees presence.
func MustGet[T any](ctx context.Context) T {
	claims, ok := Get[T](ctx)
	if !ok {
		panic("authctx: claims not found in context or wrong type")
	}
	return claims
}

// GetOrError retrieves claims of type T, returning ErrNoClaims when absent.
func GetOrError[T any](ctx context.Context) (T, error) {
	claims, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoClaims
	}
	return claims, nil
}
