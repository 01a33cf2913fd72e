package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/dataset"
	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/observability"
	"github.com/agentviz/agentviz/pkg/provider"
	"github.com/agentviz/agentviz/pkg/repair"
	"github.com/agentviz/agentviz/pkg/sandbox"
	"github.com/agentviz/agentviz/pkg/storage"
)

// ModelResolver maps a model identifier to the provider that serves it.
// *provider.Catalog satisfies this.
type ModelResolver interface {
	Resolve(modelID string) (provider.Provider, string, *api.APIError)
}

// Engine orchestrates one visualization job end to end: the agent
// exchange, code execution through the repair driver, and result
// assembly. It is safe for concurrent use; every job carries its own
// state through the registry.
type Engine struct {
	models   ModelResolver
	driver   *repair.Driver
	store    storage.JobStore
	registry *jobs.Registry
	activity *jobs.ActivityLog
	logger   *slog.Logger
	cfg      Config
}

// New creates an Engine. models and executor must not be nil; store can
// be nil for in-memory-only operation.
func New(models ModelResolver, executor sandbox.Executor, store storage.JobStore, registry *jobs.Registry, activity *jobs.ActivityLog, logger *slog.Logger, cfg Config) (*Engine, error) {
	if models == nil {
		return nil, fmt.Errorf("engine: model resolver must not be nil")
	}
	if executor == nil {
		return nil, fmt.Errorf("engine: executor must not be nil")
	}
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	if activity == nil {
		activity = jobs.NewActivityLog(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		models:   models,
		driver:   repair.NewDriver(executor, logger),
		store:    store,
		registry: registry,
		activity: activity,
		logger:   logger,
		cfg:      cfg,
	}, nil
}

// Registry exposes the active-job registry, used by the transport layer
// for cancel and status requests.
func (e *Engine) Registry() *jobs.Registry {
	return e.registry
}

// Activity exposes the bounded orchestration activity log.
func (e *Engine) Activity() *jobs.ActivityLog {
	return e.activity
}

// GenerateVisualizations runs one orchestration job and returns the
// renderer-ready chart configurations. The job is registered for the
// duration of the call so it can be cancelled by ID; its record is
// persisted in the job store when one is configured.
func (e *Engine) GenerateVisualizations(ctx context.Context, req *api.VisualizationRequest) (resp *api.VisualizationResponse, err error) {
	if req.DatasetPath == "" {
		return nil, api.NewInvalidRequestError("dataset", "no dataset available; upload one first")
	}
	table, loadErr := dataset.Load(req.DatasetPath)
	if loadErr != nil {
		return nil, api.NewDatasetError(fmt.Sprintf("could not load dataset: %s", loadErr))
	}
	summary := dataset.Summarize(table)

	analystModel := req.AnalystModel
	if analystModel == "" {
		analystModel = e.cfg.DefaultAnalystModel
	}
	coderModel := req.CoderModel
	if coderModel == "" {
		coderModel = e.cfg.DefaultCoderModel
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = api.NewJobID()
	}

	ctx, cancel := context.WithCancel(ctx)
	job := jobs.New(jobID, map[api.Role]string{
		api.RoleAnalyst: analystModel,
		api.RoleCoder:   coderModel,
	}, req.Prompt, req.DatasetPath, cancel)

	if !e.registry.Register(job) {
		cancel()
		return nil, api.NewInvalidRequestError("job_id", fmt.Sprintf("job %s is already active", jobID))
	}
	defer func() {
		e.registry.Remove(jobID)
		cancel()
	}()

	observability.JobsActive.Inc()
	defer observability.JobsActive.Dec()

	e.saveJob(ctx, job)
	e.activity.Append("job", fmt.Sprintf("job %s started (analyst=%s coder=%s)", jobID, analystModel, coderModel))

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("orchestration panic", "job_id", jobID, "panic", r)
			job.Append(systemMessage(fmt.Sprintf("Visualization generation failed: %v", r)))
			job.Finish(api.JobStatusError, fmt.Sprint(r))
			e.updateJob(context.WithoutCancel(ctx), job)
			observability.JobsTotal.WithLabelValues(string(api.JobStatusError)).Inc()
			resp = nil
			err = api.NewServerError("visualization generation failed")
		}
	}()

	spec := exchangeSpec{
		analystModel:  analystModel,
		coderModel:    coderModel,
		analystPrompt: analystPrompt(req.DatasetPath, summary),
		kickoff:       kickoff(req.Prompt, req.DatasetPath, summary),
	}

	exchErr := e.runExchange(ctx, job, spec)
	switch {
	case errors.Is(exchErr, errCancelled):
		e.updateJob(context.WithoutCancel(ctx), job)
		observability.JobsTotal.WithLabelValues(string(api.JobStatusCancelled)).Inc()
		e.activity.Append("job", fmt.Sprintf("job %s cancelled", jobID))
		return &api.VisualizationResponse{JobID: jobID, Visualizations: []map[string]any{}}, nil
	case exchErr != nil:
		e.logger.Error("conversation failed", "job_id", jobID, "error", exchErr)
		job.Append(systemMessage(fmt.Sprintf("Visualization generation failed: %s", exchErr)))
		job.Finish(api.JobStatusError, exchErr.Error())
		e.updateJob(context.WithoutCancel(ctx), job)
		observability.JobsTotal.WithLabelValues(string(api.JobStatusError)).Inc()
		return nil, exchErr
	}

	resp, execErr := e.assemble(ctx, job, table)
	if execErr != nil {
		e.logger.Error("code execution failed", "job_id", jobID, "error", execErr)
		job.Append(systemMessage(fmt.Sprintf("Visualization generation failed: %s", execErr)))
		job.Finish(api.JobStatusError, execErr.Error())
		e.updateJob(context.WithoutCancel(ctx), job)
		observability.JobsTotal.WithLabelValues(string(api.JobStatusError)).Inc()
		return nil, execErr
	}

	status := job.Status()
	if !status.Terminal() {
		job.Finish(api.JobStatusCompleted, "")
		status = api.JobStatusCompleted
	}
	e.updateJob(context.WithoutCancel(ctx), job)
	observability.JobsTotal.WithLabelValues(string(status)).Inc()
	e.activity.Append("job", fmt.Sprintf("job %s finished with status %s", jobID, status))
	return resp, nil
}

func (e *Engine) saveJob(ctx context.Context, job *jobs.Job) {
	if e.store == nil {
		return
	}
	rec := job.Snapshot()
	if err := e.store.SaveJob(ctx, &rec); err != nil && !errors.Is(err, storage.ErrConflict) {
		e.logger.Warn("persisting job failed", "job_id", rec.ID, "error", err)
	}
}

func (e *Engine) updateJob(ctx context.Context, job *jobs.Job) {
	if e.store == nil {
		return
	}
	rec := job.Snapshot()
	if err := e.store.UpdateJob(ctx, &rec); err != nil {
		e.logger.Warn("updating job failed", "job_id", rec.ID, "error", err)
	}
}

func systemMessage(content string) api.Message {
	return api.Message{
		ID:          api.NewMessageID(),
		Participant: participantSystem,
		Role:        api.RoleSystem,
		Content:     content,
		CreatedAt:   time.Now(),
	}
}
