// Package api defines the domain types shared across the agentviz
// backend: conversation messages, job records and their status machine,
// execution results, request/response payloads, identifiers, and the
// structured error taxonomy.
//
// The package has no dependencies on other agentviz packages so that
// every layer (transport, engine, sandbox, storage) can exchange these
// types freely.
package api
