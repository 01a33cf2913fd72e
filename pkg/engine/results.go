package engine

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/chart"
	"github.com/agentviz/agentviz/pkg/dataset"
	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/observability"
)

var pythonBlockRe = regexp.MustCompile("(?s)```python\\s*(.*?)\\s*```")

// assemble turns a finished exchange into the response: chart configs
// parsed from the coder's messages, plus one execution result per
// generated Python block, run sequentially through the repair driver.
// When nothing usable was produced, data-driven template charts (or a
// bare placeholder) take their place, so the response always satisfies
// the renderer's minimum shape.
func (e *Engine) assemble(ctx context.Context, job *jobs.Job, table *dataset.Table) (*api.VisualizationResponse, error) {
	snapshot := job.Snapshot()

	var configs []chart.Config
	for _, cfg := range chart.FromMessages(snapshot.Messages) {
		configs = append(configs, chart.Normalize(cfg))
	}

	var results []api.ExecutionResult
	for _, msg := range snapshot.Messages {
		if msg.Role != api.RoleCoder {
			continue
		}
		for _, m := range pythonBlockRe.FindAllStringSubmatch(msg.Content, -1) {
			// Cancellation between blocks stops further executions; the
			// blocks already run keep their results.
			if job.CancelRequested() {
				job.FinishCancelled()
				return e.response(snapshot.ID, configs, results, table), nil
			}

			start := time.Now()
			result, err := e.driver.Execute(ctx, m[1], snapshot.DatasetPath)
			observability.ExecutionDuration.Observe(time.Since(start).Seconds())
			if err != nil {
				observability.ExecutionsTotal.WithLabelValues("infra_error").Inc()
				return nil, err
			}
			if result.Failed() {
				observability.ExecutionsTotal.WithLabelValues("error").Inc()
			} else {
				observability.ExecutionsTotal.WithLabelValues("ok").Inc()
			}
			e.activity.Append("execution", fmt.Sprintf("executed code block for job %s (error=%t)", snapshot.ID, result.Failed()))
			results = append(results, result)
		}
	}

	return e.response(snapshot.ID, configs, results, table), nil
}

// response applies the terminal fallback: a job never answers with an
// empty visualization list.
func (e *Engine) response(jobID string, configs []chart.Config, results []api.ExecutionResult, table *dataset.Table) *api.VisualizationResponse {
	if len(configs) == 0 {
		if table != nil {
			configs = chart.DefaultVisualizations(table)
		}
		if len(configs) == 0 {
			configs = []chart.Config{chart.Placeholder("No Data Available")}
		}
	}
	visualizations := make([]map[string]any, 0, len(configs))
	for _, c := range configs {
		visualizations = append(visualizations, c)
	}
	return &api.VisualizationResponse{
		JobID:          jobID,
		Visualizations: visualizations,
		Results:        results,
	}
}

// SuggestVisualizations returns the template charts for a dataset
// without running an agent exchange. Used for the initial suggestion
// endpoint when no providers are reachable, and as a cheap preview.
func (e *Engine) SuggestVisualizations(_ context.Context, datasetPath string) ([]map[string]any, error) {
	if datasetPath == "" {
		return nil, api.NewInvalidRequestError("dataset", "no dataset available; upload one first")
	}
	table, err := dataset.Load(datasetPath)
	if err != nil {
		return nil, api.NewDatasetError(fmt.Sprintf("could not load dataset: %s", err))
	}
	configs := chart.DefaultVisualizations(table)
	if len(configs) == 0 {
		configs = []chart.Config{chart.Placeholder("No Data Available")}
	}
	out := make([]map[string]any, 0, len(configs))
	for _, c := range configs {
		out = append(out, c)
	}
	return out, nil
}
