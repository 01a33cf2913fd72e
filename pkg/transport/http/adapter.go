// Package http adapts the visualization engine to an HTTP API.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/dataset"
	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/provider"
	"github.com/agentviz/agentviz/pkg/storage"
	"github.com/agentviz/agentviz/pkg/transport"
)

// Adapter serves the visualization API over HTTP. It routes requests to
// the engine and serializes responses as JSON.
type Adapter struct {
	runner    transport.Runner
	suggester transport.Suggester
	catalog   Catalog
	registry  *jobs.Registry
	activity  *jobs.ActivityLog
	store     storage.JobStore // nil when jobs are kept in memory only
	mux       *http.ServeMux
	config    Config

	mu             sync.RWMutex
	currentDataset string
}

// Catalog lists the models available for agent binding.
type Catalog interface {
	Models() []provider.ModelInfo
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	UploadDir   string
	MaxBodySize int64
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		UploadDir:   "./uploads",
		MaxBodySize: 50 << 20,
	}
}

// NewAdapter creates an HTTP adapter. The runner is required; the
// suggester, catalog, and store are optional. Middleware is applied to
// the runner in the given order.
func NewAdapter(runner transport.Runner, suggester transport.Suggester, catalog Catalog, registry *jobs.Registry, activity *jobs.ActivityLog, store storage.JobStore, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		runner = transport.Chain(middlewares...)(runner)
	}
	if registry == nil {
		registry = jobs.NewRegistry()
	}
	if activity == nil {
		activity = jobs.NewActivityLog(0)
	}

	a := &Adapter{
		runner:    runner,
		suggester: suggester,
		catalog:   catalog,
		registry:  registry,
		activity:  activity,
		store:     store,
		mux:       http.NewServeMux(),
		config:    cfg,
	}

	a.mux.HandleFunc("POST /api/upload", a.handleUpload)
	a.mux.HandleFunc("GET /api/visualizations", a.handleVisualizations)
	a.mux.HandleFunc("POST /api/visualizations/prompt", a.handlePrompt)
	a.mux.HandleFunc("GET /api/models", a.handleModels)
	a.mux.HandleFunc("GET /api/jobs/{id}", a.handleGetJob)
	a.mux.HandleFunc("POST /api/jobs/{id}/cancel", a.handleCancelJob)
	a.mux.HandleFunc("GET /api/logs", a.handleLogs)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)

	return a
}

// Handler returns the http.Handler for this adapter, including the
// request ID propagation middleware.
func (a *Adapter) Handler() http.Handler {
	return requestIDMiddleware(a.mux)
}

// SetDataset sets the active dataset path, normally done by the upload
// handler. Exposed for preloading a dataset at startup.
func (a *Adapter) SetDataset(path string) {
	a.mu.Lock()
	a.currentDataset = path
	a.mu.Unlock()
}

func (a *Adapter) dataset() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentDataset
}

// requestIDMiddleware propagates the X-Request-ID header into the
// request context and mirrors it onto the response.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get("X-Request-ID"); id != "" {
			r = r.WithContext(transport.ContextWithRequestID(r.Context(), id))
			w.Header().Set("X-Request-ID", id)
		}
		next.ServeHTTP(w, r)
	})
}

// handleUpload handles POST /api/upload: a multipart CSV upload that
// becomes the active dataset.
func (a *Adapter) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) || strings.Contains(err.Error(), "request body too large") {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("file", fmt.Sprintf("upload too large (max %d bytes)", a.config.MaxBodySize)),
				http.StatusRequestEntityTooLarge)
			return
		}
		transport.WriteAPIError(w, api.NewInvalidRequestError("file", "multipart form with a 'file' field is required"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if apiErr := api.ValidateDatasetName(name, api.DefaultValidationConfig()); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	if err := os.MkdirAll(a.config.UploadDir, 0o755); err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not prepare upload directory"))
		return
	}
	path := filepath.Join(a.config.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		transport.WriteAPIError(w, api.NewServerError("could not store uploaded file"))
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(path)
		transport.WriteAPIError(w, api.NewServerError("could not store uploaded file"))
		return
	}
	dst.Close()

	table, err := dataset.Load(path)
	if err != nil {
		os.Remove(path)
		transport.WriteAPIError(w, api.NewDatasetError(fmt.Sprintf("uploaded file is not a parseable dataset: %s", err)))
		return
	}

	a.SetDataset(path)
	a.activity.Append("upload", fmt.Sprintf("dataset %s uploaded (%d rows)", name, table.NumRows))

	writeJSON(w, http.StatusOK, map[string]any{
		"filename": name,
		"rows":     table.NumRows,
		"columns":  table.Header(),
	})
}

// handleVisualizations handles GET /api/visualizations: the initial
// suggestion set. The agents run with an empty prompt; when no model
// backend is usable the data-driven templates stand in.
func (a *Adapter) handleVisualizations(w http.ResponseWriter, r *http.Request) {
	path := a.dataset()
	if path == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("dataset", "no dataset available; upload one first"))
		return
	}

	resp, err := a.runner.GenerateVisualizations(r.Context(), &api.VisualizationRequest{DatasetPath: path})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Type == api.ErrorTypeModelError && a.suggester != nil {
			configs, sugErr := a.suggester.SuggestVisualizations(r.Context(), path)
			if sugErr == nil {
				writeJSON(w, http.StatusOK, api.VisualizationResponse{Visualizations: configs})
				return
			}
		}
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePrompt handles POST /api/visualizations/prompt.
func (a *Adapter) handlePrompt(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.VisualizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}
	if apiErr := api.ValidateVisualizationRequest(&req, api.DefaultValidationConfig()); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	req.DatasetPath = a.dataset()
	resp, err := a.runner.GenerateVisualizations(r.Context(), &req)
	if err != nil {
		writeRunError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleModels handles GET /api/models.
func (a *Adapter) handleModels(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeJSON(w, http.StatusOK, map[string]any{"models": []provider.ModelInfo{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"models": a.catalog.Models()})
}

// handleGetJob handles GET /api/jobs/{id}. Live jobs come from the
// registry; finished ones from the store when one is configured.
func (a *Adapter) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateJobID(id) {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "malformed job ID"))
		return
	}

	if job, ok := a.registry.Get(id); ok {
		writeJSON(w, http.StatusOK, job.Snapshot())
		return
	}

	if a.store != nil {
		rec, err := a.store.GetJob(r.Context(), id)
		if err == nil {
			writeJSON(w, http.StatusOK, rec)
			return
		}
		if !errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewServerError(err.Error()))
			return
		}
	}
	transport.WriteAPIError(w, api.NewNotFoundError("job "+id+" not found"))
}

// handleCancelJob handles POST /api/jobs/{id}/cancel. Cancelling a job
// that exists but is no longer active is reported as a mismatch, never
// silently applied elsewhere.
func (a *Adapter) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !api.ValidateJobID(id) {
		transport.WriteAPIError(w, api.NewInvalidRequestError("id", "malformed job ID"))
		return
	}

	if a.registry.Cancel(id) {
		writeJSON(w, http.StatusOK, map[string]any{"job_id": id, "cancelled": true})
		return
	}

	// Not active. Distinguish finished jobs from unknown IDs.
	if a.store != nil {
		if _, err := a.store.GetJob(r.Context(), id); err == nil {
			transport.WriteErrorResponse(w,
				api.NewInvalidRequestError("id", fmt.Sprintf("job ID mismatch: job %s is not active", id)),
				http.StatusConflict)
			return
		}
	}
	transport.WriteAPIError(w, api.NewNotFoundError("job "+id+" not found"))
}

// handleLogs handles GET /api/logs.
func (a *Adapter) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := a.activity.Entries()
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 {
			transport.WriteAPIError(w, api.NewInvalidRequestError("limit", "limit must be a positive integer"))
			return
		}
		if limit < len(entries) {
			entries = entries[len(entries)-limit:]
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": entries})
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if a.store != nil {
		if err := a.store.HealthCheck(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRunError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		apiErr = api.NewServerError(err.Error())
	}
	transport.WriteAPIError(w, apiErr)
}
