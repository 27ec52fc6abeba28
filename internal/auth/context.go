// Package auth provides identity resolution and the ownership guard.
package auth

import (
	"context"

	"github.com/homelet/homelet/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityContextKey is the context key for storing the resolved Identity.
const identityContextKey contextKey = "identity"

// ContextWithIdentity adds a resolved Identity to the context.
func ContextWithIdentity(ctx context.Context, ident *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, ident)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil for anonymous requests. Every operation that cares about
// the caller takes the identity as an explicit parameter from here;
// nothing reads ambient global session state.
func IdentityFromContext(ctx context.Context) *model.Identity {
	ident, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return ident
}
