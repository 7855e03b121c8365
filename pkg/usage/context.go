package usage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Identity is the authenticated caller as supplied by the identity provider.
// This service trusts it without re-validating.
type Identity struct {
	ID    uuid.UUID
	Email string
	Role  string
}

type identityCtxKey struct{}

// SetIdentityToContext stores the request identity for downstream access.
func SetIdentityToContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// GetIdentityFromContext retrieves the request identity, if present.
func GetIdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// IdentityContextResolver is the default IdentityResolver: it reads the
// identity placed in the context by the authentication middleware.
func IdentityContextResolver(ctx context.Context, _ uuid.UUID) (Identity, error) {
	id, ok := GetIdentityFromContext(ctx)
	if !ok {
		return Identity{}, errors.Join(ErrUserNotFound, ErrIdentityNotInContext)
	}
	return id, nil
}
