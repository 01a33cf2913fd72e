package auth

import (
	"context"
	"errors"
	"net/http"
)

// AuthDecision is the vote an authenticator casts for a request.
type AuthDecision int

const (
	// Yes means the credentials are valid. The chain stops and the
	// returned identity is attached to the request.
	Yes AuthDecision = iota

	// No means credentials were presented but rejected. The chain stops
	// and the request fails with 401.
	No

	// Abstain means this authenticator does not handle the credential
	// type. The chain moves on to the next authenticator.
	Abstain
)

// AuthResult carries the outcome of an authentication attempt.
type AuthResult struct {
	Decision AuthDecision
	Identity *Identity // set only when Decision == Yes
	Err      error     // set only when Decision == No
}

// Identity describes an authenticated caller.
type Identity struct {
	// Subject uniquely identifies the caller. Must be non-empty.
	Subject string

	// ServiceTier selects the rate-limit bucket for this caller.
	ServiceTier string

	// Scopes lists granted authorization scopes.
	Scopes []string

	// Metadata carries provider-specific attributes. The "tenant_id"
	// key scopes job storage per tenant.
	Metadata map[string]string
}

// TenantID returns the tenant identifier from metadata, or "".
func (id *Identity) TenantID() string {
	if id == nil || id.Metadata == nil {
		return ""
	}
	return id.Metadata["tenant_id"]
}

// Authenticator inspects request credentials and casts a vote.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) AuthResult
}

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrTooManyRequests = errors.New("rate limit exceeded")
)

// AuthChain evaluates authenticators left to right until one votes
// Yes or No. When everyone abstains the DefaultDecision applies.
type AuthChain struct {
	Authenticators []Authenticator

	// DefaultDecision handles the all-abstain case. Yes admits the
	// request anonymously (development mode), No rejects it.
	DefaultDecision AuthDecision
}

// Authenticate runs the chain and returns the first non-abstain vote.
func (c *AuthChain) Authenticate(ctx context.Context, r *http.Request) AuthResult {
	for _, authn := range c.Authenticators {
		result := authn.Authenticate(ctx, r)
		if result.Decision != Abstain {
			return result
		}
	}

	if c.DefaultDecision == Yes {
		return AuthResult{
			Decision: Yes,
			Identity: &Identity{Subject: "anonymous", ServiceTier: "default"},
		}
	}

	return AuthResult{Decision: No, Err: ErrUnauthenticated}
}
