package transport

import (
	"context"

	"github.com/agentviz/agentviz/pkg/api"
)

// Runner executes one visualization job: the agent exchange, code
// execution, and result assembly. *engine.Engine is the production
// implementation.
type Runner interface {
	GenerateVisualizations(ctx context.Context, req *api.VisualizationRequest) (*api.VisualizationResponse, error)
}

// RunnerFunc adapts an ordinary function to the Runner interface.
type RunnerFunc func(ctx context.Context, req *api.VisualizationRequest) (*api.VisualizationResponse, error)

func (f RunnerFunc) GenerateVisualizations(ctx context.Context, req *api.VisualizationRequest) (*api.VisualizationResponse, error) {
	return f(ctx, req)
}

// Suggester produces data-driven template visualizations for a dataset
// without an agent exchange.
type Suggester interface {
	SuggestVisualizations(ctx context.Context, datasetPath string) ([]map[string]any, error)
}
