package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentviz/agentviz/pkg/provider"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OllamaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestComplete(t *testing.T) {
	var gotReq chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(chatResponse{
			Model:           "llama3",
			Message:         provider.Message{Role: "assistant", Content: "ciao"},
			Done:            true,
			PromptEvalCount: 12,
			EvalCount:       4,
		})
	})

	resp, err := p.Complete(context.Background(), &provider.ChatRequest{
		Model:    "llama3",
		Messages: []provider.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if gotReq.Stream {
		t.Error("request asked for streaming")
	}
	if resp.Content != "ciao" {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("total tokens = %d, want 16", resp.Usage.TotalTokens)
	}
}

func TestListModelsPrefixesIdentifiers(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"models": [{"name": "llama3:latest"}, {"name": "mistral"}]}`))
	})

	models, err := p.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("got %d models, want 2", len(models))
	}
	if models[0].ID != "ollama:llama3:latest" {
		t.Errorf("id = %q", models[0].ID)
	}
	if models[0].DisplayName != "Ollama: llama3:latest" {
		t.Errorf("display name = %q", models[0].DisplayName)
	}
}

func TestListModelsConnectionErrorSurfaces(t *testing.T) {
	p, err := New(Config{BaseURL: "http://127.0.0.1:1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.ListModels(context.Background()); err == nil {
		t.Error("expected connection error from unreachable runtime")
	}
}
