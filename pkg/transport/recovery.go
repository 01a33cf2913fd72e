package transport

import (
	"context"
	"fmt"

	"github.com/agentviz/agentviz/pkg/api"
)

// Recovery returns middleware that catches panics in the runner and
// converts them to server error responses. The server keeps accepting
// requests after a recovered panic.
func Recovery() Middleware {
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req *api.VisualizationRequest) (resp *api.VisualizationResponse, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					resp = nil
					retErr = api.NewServerError(fmt.Sprintf("internal server error: %v", r))
				}
			}()
			return next.GenerateVisualizations(ctx, req)
		})
	}
}
