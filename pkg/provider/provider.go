// Package provider abstracts the LLM inference backends that power the
// agent conversation: a hosted OpenAI-compatible service (Groq) and a
// local Ollama runtime as its fallback. The Catalog merges the models
// both expose and routes each completion to the right backend.
package provider

import (
	"context"
)

// Message is one chat turn sent to an inference backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the backend-facing completion request.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Usage is the token accounting reported by the backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResponse is the backend's completion.
type ChatResponse struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// ModelInfo describes one selectable model.
type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Source      string `json:"source"`
}

// Provider is an LLM inference backend.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "groq", "ollama").
	Name() string

	// Complete performs a non-streaming chat completion.
	Complete(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// ListModels returns the models the backend can serve.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}
