// Package apikey authenticates bearer tokens against a static set of
// keys. Keys are held only as SHA-256 hashes and compared in constant
// time.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/agentviz/agentviz/pkg/auth"
)

// KeyEntry pairs a key hash with the identity it grants.
type KeyEntry struct {
	KeyHash  [32]byte
	Identity auth.Identity
}

// RawKeyEntry is the configuration form of a key before hashing.
type RawKeyEntry struct {
	Key      string
	Identity auth.Identity
}

// Authenticator validates bearer tokens against the configured keys.
type Authenticator struct {
	keys []KeyEntry
}

// New hashes the supplied keys and builds an authenticator. Plaintext
// keys are not retained.
func New(entries []RawKeyEntry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		a.keys = append(a.keys, KeyEntry{
			KeyHash:  sha256.Sum256([]byte(e.Key)),
			Identity: e.Identity,
		})
	}
	return a
}

// Authenticate votes Yes for a known key, No for an unknown or empty
// bearer token, and Abstain when no bearer credentials are present.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return auth.AuthResult{Decision: auth.Abstain}
	}

	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	tokenHash := sha256.Sum256([]byte(token))
	for _, entry := range a.keys {
		if subtle.ConstantTimeCompare(tokenHash[:], entry.KeyHash[:]) == 1 {
			id := entry.Identity
			return auth.AuthResult{Decision: auth.Yes, Identity: &id}
		}
	}

	return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
}
