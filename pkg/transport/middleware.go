package transport

import "context"

// Middleware wraps a Runner to add cross-cutting behavior. Middleware
// is applied in order: the first middleware in the chain is the
// outermost wrapper.
type Middleware func(Runner) Runner

// Chain composes multiple middleware into a single middleware.
// Chain(a, b, c) produces a(b(c(runner))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next Runner) Runner {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// RequestIDFromContext extracts the request ID from the context, or ""
// if none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
