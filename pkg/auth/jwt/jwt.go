// Package jwt authenticates HS256 bearer tokens signed with a shared
// secret. Tokens are expected to carry the caller in the "sub" claim;
// "tenant_id", "scope", and "tier" are mapped onto the identity when
// present.
package jwt

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentviz/agentviz/pkg/auth"
)

// Config holds the validation parameters.
type Config struct {
	// Secret is the HMAC signing secret. Required.
	Secret string

	// Issuer, when set, must match the token's "iss" claim.
	Issuer string
}

// Authenticator validates HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
}

// New creates an authenticator from the config.
func New(cfg Config) (*Authenticator, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt: secret is required")
	}
	return &Authenticator{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}, nil
}

// Authenticate votes Abstain unless the bearer token has JWT shape
// (two dots), then Yes or No based on signature and claims.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	raw := strings.TrimPrefix(header, "Bearer ")
	if strings.Count(raw, ".") != 2 {
		// Not a JWT. Leave it for the API key authenticator.
		return auth.AuthResult{Decision: auth.Abstain}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("invalid token: %w", err),
		}
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return auth.AuthResult{
			Decision: auth.No,
			Err:      fmt.Errorf("token has no subject: %w", auth.ErrUnauthenticated),
		}
	}

	identity := &auth.Identity{Subject: subject}
	if tier, ok := claims["tier"].(string); ok {
		identity.ServiceTier = tier
	}
	if scope, ok := claims["scope"].(string); ok && scope != "" {
		identity.Scopes = strings.Fields(scope)
	}
	if tenant, ok := claims["tenant_id"].(string); ok && tenant != "" {
		identity.Metadata = map[string]string{"tenant_id": tenant}
	}

	return auth.AuthResult{Decision: auth.Yes, Identity: identity}
}
