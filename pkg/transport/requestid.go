package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/agentviz/agentviz/pkg/api"
)

// RequestID returns middleware that assigns a unique request ID to each
// run. If the context already carries a request ID (set by the HTTP
// adapter from the X-Request-ID header), that value is kept.
func RequestID() Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req *api.VisualizationRequest) (*api.VisualizationResponse, error) {
			if RequestIDFromContext(ctx) == "" {
				ctx = ContextWithRequestID(ctx, generateRequestID())
			}
			return next.GenerateVisualizations(ctx, req)
		})
	}
}

func generateRequestID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
