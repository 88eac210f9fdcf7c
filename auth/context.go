package auth

import (
	"context"
	"messenger/domain"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"
	UserIDKey   contextKey = "user_id"
	RolesKey    contextKey = "roles"
)

// WithClaims injects the verified caller into ctx for downstream service layers.
func WithClaims(ctx context.Context, claims *CustomClaims) context.Context {
	ctx = context.WithValue(ctx, IdentityKey, claims.Identity())
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, RolesKey, claims.Roles)
}

// WithIdentity marks ctx as carrying an identity that was already verified,
// e.g. the identity cached on an authenticated channel.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.Identity)
	if !ok || identity.IsZero() {
		return "", false
	}
	return identity, true
}
