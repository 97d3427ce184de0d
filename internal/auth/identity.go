// Package auth resolves the caller's identity and carries it through
// request contexts.
package auth

import (
	"context"
	"errors"
)

// ErrNotAuthenticated is returned when an operation needs a user and none is known
var ErrNotAuthenticated = errors.New("not authenticated")

// Identity is the authenticated caller
type Identity struct {
	UserID string
	Token  string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity stored in ctx
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// Token returns the session token in ctx, or an empty string
func Token(ctx context.Context) string {
	id, _ := FromContext(ctx)
	return id.Token
}
