// Package ollama implements provider.Provider against a local Ollama
// runtime, used as the fallback when no hosted credential is
// configured.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/provider"
)

// Config holds the connection settings for the Ollama runtime.
type Config struct {
	// BaseURL is the runtime root, e.g. "http://localhost:11434".
	BaseURL string

	// Timeout bounds each HTTP request. Defaults to 120s; local models
	// are slow.
	Timeout time.Duration
}

// OllamaProvider implements provider.Provider for a local Ollama
// runtime using its native chat API.
type OllamaProvider struct {
	cfg    Config
	client *http.Client
}

var _ provider.Provider = (*OllamaProvider)(nil)

// chatRequest is Ollama's native /api/chat request body.
type chatRequest struct {
	Model    string             `json:"model"`
	Messages []provider.Message `json:"messages"`
	Stream   bool               `json:"stream"`
	Options  map[string]any     `json:"options,omitempty"`
}

// chatResponse is the non-streaming /api/chat response body.
type chatResponse struct {
	Model           string           `json:"model"`
	Message         provider.Message `json:"message"`
	Done            bool             `json:"done"`
	PromptEvalCount int              `json:"prompt_eval_count"`
	EvalCount       int              `json:"eval_count"`
}

// tagsResponse is the /api/tags response body.
type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// New creates an OllamaProvider.
func New(cfg Config) (*OllamaProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: BaseURL is required")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &OllamaProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Complete performs a non-streaming chat completion.
func (p *OllamaProvider) Complete(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	ollamaReq := chatRequest{
		Model:    req.Model,
		Messages: req.Messages,
		Stream:   false,
	}
	if req.Temperature != nil {
		ollamaReq.Options = map[string]any{"temperature": *req.Temperature}
	}

	body, err := json.Marshal(ollamaReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("ollama connection error: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, api.NewServerError(fmt.Sprintf("ollama returned HTTP %d", httpResp.StatusCode))
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse ollama response: %s", err.Error()))
	}

	return &provider.ChatResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: provider.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

// ListModels returns the locally pulled models via /api/tags. It doubles
// as the availability probe: a connection error means no local runtime.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("ollama connection error: %s", err.Error()))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, api.NewServerError(fmt.Sprintf("ollama returned HTTP %d", httpResp.StatusCode))
	}

	var tags tagsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&tags); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse ollama tags: %s", err.Error()))
	}

	models := make([]provider.ModelInfo, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name == "" {
			continue
		}
		models = append(models, provider.ModelInfo{
			ID:          "ollama:" + m.Name,
			DisplayName: "Ollama: " + m.Name,
			Source:      "ollama",
		})
	}
	return models, nil
}

// Close releases provider resources.
func (p *OllamaProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
