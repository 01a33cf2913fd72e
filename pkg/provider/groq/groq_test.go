package groq

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentviz/agentviz/pkg/api"
	"github.com/agentviz/agentviz/pkg/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) (*GroqProvider, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, server
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(Config{APIKey: "k"}); err == nil {
		t.Error("expected error for missing BaseURL")
	}
	if _, err := New(Config{BaseURL: "http://x"}); err == nil {
		t.Error("expected error for missing APIKey")
	}
}

func TestComplete(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(chatCompletionResponse{
			Model: "llama-3.3-70b-versatile",
			Choices: []chatChoice{{
				Message:      provider.Message{Role: "assistant", Content: "hello"},
				FinishReason: "stop",
			}},
			Usage: chatUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		})
	})

	resp, err := p.Complete(context.Background(), &provider.ChatRequest{
		Model:    "llama-3.3-70b-versatile",
		Messages: []provider.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if resp.Content != "hello" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestCompleteErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantType api.ErrorType
	}{
		{"bad request", http.StatusBadRequest, api.ErrorTypeInvalidRequest},
		{"unauthorized", http.StatusUnauthorized, api.ErrorTypeModelError},
		{"not found", http.StatusNotFound, api.ErrorTypeNotFound},
		{"rate limited", http.StatusTooManyRequests, api.ErrorTypeTooManyRequests},
		{"server error", http.StatusInternalServerError, api.ErrorTypeServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error": {"message": "backend says no"}}`))
			})

			_, err := p.Complete(context.Background(), &provider.ChatRequest{Model: "m"})
			var apiErr *api.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *api.APIError", err)
			}
			if apiErr.Type != tt.wantType {
				t.Errorf("type = %s, want %s", apiErr.Type, tt.wantType)
			}
			if apiErr.Message != "backend says no" {
				t.Errorf("message = %q, want backend envelope message", apiErr.Message)
			}
		})
	}
}

func TestCompleteNoChoices(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(chatCompletionResponse{})
	})
	if _, err := p.Complete(context.Background(), &provider.ChatRequest{Model: "m"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestListModels(t *testing.T) {
	p, _ := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(modelListResponse{Data: []modelEntry{
			{ID: "llama-3.3-70b-versatile"},
			{ID: "text-embedding-3-small"},
		}})
	})

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2 (catalog filters, the client does not)", len(models))
	}
	if models[0].DisplayName != "Groq: llama-3.3-70b-versatile" {
		t.Errorf("display name = %q", models[0].DisplayName)
	}
	if models[0].Source != "groq" {
		t.Errorf("source = %q", models[0].Source)
	}
}
