// Command sandbox-server runs the HTTP execution endpoint deployed
// inside agent-sandbox pods. It exposes the same /execute contract the
// backend's remote runner speaks and delegates each request to the
// subprocess runner used in local mode.
//
// Configuration:
//
//	SANDBOX_PORT           - Listen port (default: 8080)
//	SANDBOX_PYTHON_BIN     - Python interpreter (default: python3)
//	SANDBOX_TIMEOUT        - Per-execution wall clock (default: 60s)
//	SANDBOX_MAX_CONCURRENT - Max concurrent executions (default: 3)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/agentviz/agentviz/pkg/sandbox"
)

func main() {
	port := envOr("SANDBOX_PORT", "8080")
	pythonBin := envOr("SANDBOX_PYTHON_BIN", "python3")
	maxConcurrent := envOrInt("SANDBOX_MAX_CONCURRENT", 3)

	timeout := 60 * time.Second
	if v := os.Getenv("SANDBOX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Error("invalid SANDBOX_TIMEOUT", "value", v, "error", err.Error())
			os.Exit(1)
		}
		timeout = d
	}

	if _, err := exec.LookPath(pythonBin); err != nil {
		slog.Error("python interpreter not found in PATH", "bin", pythonBin)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	srv := &execServer{
		runner:        sandbox.NewRunner(pythonBin, timeout, 0, logger),
		maxConcurrent: int32(maxConcurrent),
		startTime:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", srv.handleExecute)
	mux.HandleFunc("GET /health", srv.handleHealth)

	httpSrv := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: timeout + 30*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("sandbox server starting", "port", port, "python", pythonBin, "timeout", timeout, "max_concurrent", maxConcurrent)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpSrv.Shutdown(shutdownCtx)
}

type execServer struct {
	runner        *sandbox.Runner
	maxConcurrent int32
	currentLoad   atomic.Int32
	startTime     time.Time
}

func (s *execServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	current := s.currentLoad.Add(1)
	defer s.currentLoad.Add(-1)

	if current > s.maxConcurrent {
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": fmt.Sprintf("at capacity (%d/%d concurrent executions)", current, s.maxConcurrent),
		})
		return
	}

	var req sandbox.ExecuteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 10<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request: " + err.Error()})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code is required"})
		return
	}

	preview := req.Code
	if len(preview) > 120 {
		preview = preview[:120] + "..."
	}
	slog.Info("execute request", "code", preview, "data_path", req.DataPath)

	start := time.Now()
	result, err := s.runner.Execute(r.Context(), req.Code, req.DataPath)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	slog.Info("execute complete",
		"duration_ms", time.Since(start).Milliseconds(),
		"has_figure", len(result.Figure) > 0,
		"error", result.Error != "",
	)

	writeJSON(w, http.StatusOK, sandbox.ExecuteResponse{
		Figure: result.Figure,
		Output: result.Output,
		Error:  result.Error,
		Code:   result.Code,
	})
}

func (s *execServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"capacity":       s.maxConcurrent,
		"current_load":   s.currentLoad.Load(),
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func envOr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return defaultVal
	}
	return n
}
