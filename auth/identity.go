package auth

import (
	"context"
	"time"
)

// Method indicates how a request was authenticated.
type Method string

const (
	MethodAPIKey Method = "api_key"
	MethodJWT    Method = "jwt"
)

// Identity is the authenticated caller.
type Identity struct {
	// Principal identifies the caller: the key ID or the token subject.
	Principal string

	// Method is how the caller authenticated.
	Method Method

	// ExpiresAt is when the credential expires. Zero means never.
	ExpiresAt time.Time
}

type identityKey struct{}

// WithIdentity returns a context carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity attached by Middleware, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
