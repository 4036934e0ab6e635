// Package auth resolves opaque bearer tokens to owner identities.
//
// Token verification lives behind the Resolver port; the service only
// needs the owner id that scopes every ledger query.
package auth

import (
	"context"
	"errors"
)

var ErrUnknownToken = errors.New("unknown token")

// Resolver maps a bearer token to the owner it authenticates.
type Resolver interface {
	Resolve(ctx context.Context, token string) (ownerID string, err error)
}

// StaticResolver resolves tokens against a fixed in-memory map.
type StaticResolver struct {
	owners map[string]string
}

func NewStaticResolver(owners map[string]string) *StaticResolver {
	copied := make(map[string]string, len(owners))
	for token, owner := range owners {
		copied[token] = owner
	}
	return &StaticResolver{owners: copied}
}

func (r *StaticResolver) Resolve(_ context.Context, token string) (string, error) {
	owner, ok := r.owners[token]
	if !ok {
		return "", ErrUnknownToken
	}
	return owner, nil
}

type contextKey string

const ownerContextKey contextKey = "owner"

// WithOwner returns a context carrying the authenticated owner id.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerContextKey, ownerID)
}

// OwnerFromContext extracts the authenticated owner id set by the middleware.
func OwnerFromContext(ctx context.Context) (string, bool) {
	owner, ok := ctx.Value(ownerContextKey).(string)
	return owner, ok && owner != ""
}
