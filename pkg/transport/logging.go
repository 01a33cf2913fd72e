package transport

import (
	"context"
	"log/slog"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
)

// Logging returns middleware that emits one structured log entry per
// visualization run: request ID, models, dataset, duration, and outcome.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Runner) Runner {
		return RunnerFunc(func(ctx context.Context, req *api.VisualizationRequest) (*api.VisualizationResponse, error) {
			start := time.Now()
			resp, err := next.GenerateVisualizations(ctx, req)

			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("analyst_model", req.AnalystModel),
				slog.String("coder_model", req.CoderModel),
				slog.String("dataset", req.DatasetPath),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "visualization run failed", attrs...)
			} else {
				attrs = append(attrs,
					slog.String("job_id", resp.JobID),
					slog.Int("visualizations", len(resp.Visualizations)),
				)
				logger.LogAttrs(ctx, slog.LevelInfo, "visualization run completed", attrs...)
			}
			return resp, err
		})
	}
}
