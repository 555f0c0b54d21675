// ABOUTME: Identity context for tracking the signed-in user through request handlers
// ABOUTME: Provides WithIdentity/FromContext for propagating identity via context

package auth

import (
	"context"
)

// identityContextKey is the key type for storing Identity in context.Context.
type identityContextKey struct{}

// WithIdentity returns a new context with the Identity attached.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// MustFromContext retrieves the Identity from the context, panicking if not present.
func MustFromContext(ctx context.Context) *Identity {
	id := FromContext(ctx)
	if id == nil {
		panic("auth: Identity not found in context")
	}
	return id
}

// BearerToken returns the raw token of the identity in ctx, or "". It
// matches the api.TokenSource signature.
func BearerToken(ctx context.Context) string {
	if id := FromContext(ctx); id != nil {
		return id.Token
	}
	return ""
}
