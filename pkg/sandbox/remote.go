package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
)

// ExecuteRequest is the wire form of an execution request to a remote
// sandbox server.
type ExecuteRequest struct {
	Code     string `json:"code"`
	DataPath string `json:"data_path,omitempty"`
}

// ExecuteResponse is the wire form of a remote execution result.
type ExecuteResponse struct {
	Figure map[string]any `json:"figure"`
	Output string         `json:"output"`
	Error  string         `json:"error"`
	Code   string         `json:"code"`
}

// RemoteRunner executes code on a sandbox server over HTTP. The base
// URL is resolved per call so that claim-based acquirers can hand out
// short-lived sandbox endpoints.
type RemoteRunner struct {
	resolveURL func(ctx context.Context) (url string, release func(), err error)
	httpClient *http.Client
}

// NewRemoteRunner creates a runner against a fixed sandbox URL.
func NewRemoteRunner(baseURL string) *RemoteRunner {
	return NewAcquiredRunner(func(context.Context) (string, func(), error) {
		return baseURL, func() {}, nil
	})
}

// NewAcquiredRunner creates a runner that resolves a sandbox endpoint
// per execution, releasing it when the call finishes.
func NewAcquiredRunner(resolve func(ctx context.Context) (string, func(), error)) *RemoteRunner {
	return &RemoteRunner{
		resolveURL: resolve,
		httpClient: &http.Client{
			// Overall HTTP timeout; the execution timeout itself is
			// enforced by the sandbox server.
			Timeout: 120 * time.Second,
		},
	}
}

// Execute sends the code to the sandbox server's /execute endpoint.
func (r *RemoteRunner) Execute(ctx context.Context, code, dataPath string) (api.ExecutionResult, error) {
	var result api.ExecutionResult

	baseURL, release, err := r.resolveURL(ctx)
	if err != nil {
		return result, fmt.Errorf("acquiring sandbox: %w", err)
	}
	defer release()

	body, err := json.Marshal(ExecuteRequest{Code: code, DataPath: dataPath})
	if err != nil {
		return result, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return result, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return result, fmt.Errorf("sandbox request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return result, fmt.Errorf("sandbox at capacity (HTTP 429)")
	}
	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("sandbox returned HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var wire ExecuteResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}

	result.Figure = wire.Figure
	result.Output = wire.Output
	result.Error = wire.Error
	result.Code = wire.Code
	return result, nil
}
