package auth

import "context"

type identityKey struct{}

// SetIdentity stores the authenticated identity in the context.
func SetIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the authenticated identity, or nil when
// the request was not authenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}
