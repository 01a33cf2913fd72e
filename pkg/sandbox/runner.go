package sandbox

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/debug"
)

//go:embed harness.py
var harnessSource string

// Runner executes generated code locally in a python3 subprocess. Each
// execution gets a fresh scratch directory and a fresh interpreter;
// nothing carries over between attempts. The configured timeout is a
// hard wall-clock limit enforced by killing the subprocess.
type Runner struct {
	pythonBin      string
	timeout        time.Duration
	maxOutputBytes int
	logger         *slog.Logger
}

// NewRunner creates a local subprocess runner.
func NewRunner(pythonBin string, timeout time.Duration, maxOutputBytes int, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pythonBin:      pythonBin,
		timeout:        timeout,
		maxOutputBytes: maxOutputBytes,
		logger:         logger,
	}
}

// harnessResult is the JSON document the embedded harness writes.
type harnessResult struct {
	Figure map[string]any `json:"figure"`
	Output string         `json:"output"`
	Error  string         `json:"error"`
}

// Execute sanitizes the code and runs it through the embedded harness.
func (r *Runner) Execute(ctx context.Context, code, dataPath string) (api.ExecutionResult, error) {
	sanitized := Sanitize(code)
	result := api.ExecutionResult{Code: sanitized}
	debug.Log("sandbox", "executing code block", "bytes", len(sanitized), "data_path", dataPath)

	dir, err := os.MkdirTemp("", "agentviz-exec-")
	if err != nil {
		return result, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(dir)

	codePath := filepath.Join(dir, "code.py")
	harnessPath := filepath.Join(dir, "harness.py")
	resultPath := filepath.Join(dir, "result.json")

	if err := os.WriteFile(codePath, []byte(sanitized), 0o600); err != nil {
		return result, fmt.Errorf("writing code file: %w", err)
	}
	if err := os.WriteFile(harnessPath, []byte(harnessSource), 0o600); err != nil {
		return result, fmt.Errorf("writing harness file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr strings.Builder
	cmd := exec.CommandContext(ctx, r.pythonBin, harnessPath, codePath, dataPath, resultPath)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.Dir = dir

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		r.logger.Warn("execution timed out", "timeout", r.timeout, "data_path", dataPath)
		result.Error = fmt.Sprintf("execution timed out after %s", r.timeout)
		return result, nil
	}

	data, readErr := os.ReadFile(resultPath)
	if readErr != nil {
		// The harness never wrote a result, so the interpreter itself
		// failed (missing binary, missing libraries, killed).
		msg := strings.TrimSpace(stderr.String())
		if msg == "" && runErr != nil {
			msg = runErr.Error()
		}
		if _, lookErr := exec.LookPath(r.pythonBin); lookErr != nil {
			return result, fmt.Errorf("python interpreter %q not found: %w", r.pythonBin, lookErr)
		}
		result.Error = fmt.Sprintf("execution harness failed: %s", msg)
		return result, nil
	}

	var hr harnessResult
	if err := json.Unmarshal(data, &hr); err != nil {
		result.Error = fmt.Sprintf("unreadable harness result: %v", err)
		return result, nil
	}

	result.Figure = hr.Figure
	result.Output = clamp(hr.Output, r.maxOutputBytes)
	result.Error = clamp(hr.Error, r.maxOutputBytes)

	r.logger.Debug("execution finished",
		"duration", elapsed,
		"has_figure", len(result.Figure) > 0,
		"failed", result.Failed())

	return result, nil
}

// clamp truncates s to at most max bytes, appending a truncation note.
func clamp(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "\n... (output truncated)"
}
