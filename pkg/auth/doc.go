// Package auth provides pluggable authentication for the visualization API.
//
// Authenticators are arranged in a chain with three-outcome voting: each
// returns Yes (caller identified), No (credentials present but invalid), or
// Abstain (credential type not handled). When every authenticator abstains,
// a configurable default decides whether anonymous access is allowed.
//
// Auth runs as HTTP middleware ahead of the API handlers. On success the
// middleware places the caller identity and tenant in the request context
// so the job store can scope queries per tenant.
package auth
