// Package groq implements provider.Provider against Groq's
// OpenAI-compatible Chat Completions API. Any backend speaking the same
// protocol works by pointing BaseURL at it.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/debug"
	"github.com/agentviz/agentviz/pkg/provider"
)

// Config holds the connection settings for the Groq backend.
type Config struct {
	// BaseURL is the API root, e.g. "https://api.groq.com/openai/v1".
	BaseURL string

	// APIKey is the bearer credential.
	APIKey string

	// Timeout bounds each HTTP request. Defaults to 60s.
	Timeout time.Duration
}

// GroqProvider implements provider.Provider for Groq and other
// OpenAI-compatible Chat Completions backends.
type GroqProvider struct {
	cfg    Config
	client *http.Client
}

var _ provider.Provider = (*GroqProvider)(nil)

// New creates a GroqProvider. Returns an error if the configuration is
// incomplete.
func New(cfg Config) (*GroqProvider, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("groq: BaseURL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("groq: APIKey is required")
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &GroqProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name returns the provider identifier.
func (p *GroqProvider) Name() string {
	return "groq"
}

// Complete performs a non-streaming chat completion.
func (p *GroqProvider) Complete(ctx context.Context, req *provider.ChatRequest) (*provider.ChatResponse, error) {
	chatReq := chatCompletionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	url := p.cfg.BaseURL + "/chat/completions"
	debug.Log("providers", "completion request", "provider", "groq", "model", req.Model, "messages", len(req.Messages))
	debug.Raw("providers", string(body))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var chatResp chatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	if len(chatResp.Choices) == 0 {
		return nil, api.NewServerError("backend returned no choices")
	}

	return &provider.ChatResponse{
		Content: chatResp.Choices[0].Message.Content,
		Model:   chatResp.Model,
		Usage: provider.Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		},
	}, nil
}

// ListModels returns the models the backend serves.
func (p *GroqProvider) ListModels(ctx context.Context) ([]provider.ModelInfo, error) {
	url := p.cfg.BaseURL + "/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, mapHTTPError(httpResp)
	}

	var list modelListResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&list); err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to parse model list: %s", err.Error()))
	}

	models := make([]provider.ModelInfo, 0, len(list.Data))
	for _, entry := range list.Data {
		models = append(models, provider.ModelInfo{
			ID:          entry.ID,
			DisplayName: "Groq: " + entry.ID,
			Source:      "groq",
		})
	}
	return models, nil
}

// Close releases provider resources.
func (p *GroqProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
