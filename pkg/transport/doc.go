// Package transport defines the handler contract and middleware chain
// for the visualization HTTP layer.
//
// The transport layer bridges external clients and the orchestration
// engine. It deserializes incoming requests into the types defined in
// pkg/api, dispatches them to a Runner, and serializes the results back
// as JSON.
//
// # Handler Interfaces
//
// Runner is the contract the engine fulfills: one call runs a complete
// orchestration job. Suggester produces the cheap template
// visualizations used when no agent exchange is wanted or possible.
//
// # Middleware
//
// Middleware wraps a Runner with cross-cutting concerns. Built-in
// middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured logging via log/slog. HTTP-level
// concerns (metrics, auth) wrap the adapter's handler instead.
package transport
