// Package noop provides an authenticator that admits every request
// with an anonymous identity. Intended for local development.
package noop

import (
	"context"
	"net/http"

	"github.com/agentviz/agentviz/pkg/auth"
)

// Authenticator always votes Yes with an anonymous identity.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	return auth.AuthResult{
		Decision: auth.Yes,
		Identity: &auth.Identity{
			Subject:     "anonymous",
			ServiceTier: "default",
		},
	}
}
