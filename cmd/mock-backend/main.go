// Command mock-backend runs a deterministic OpenAI-compatible Chat
// Completions server for local development and integration testing.
// Point AGENTVIZ_GROQ_BASE_URL at it to exercise the full agent
// conversation without a hosted model: it answers analyst prompts with
// a visualization plan and coder prompts with a chart configuration.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

// analystReply is returned to the data-analysis agent prompt.
const analystReply = `Based on the dataset, I suggest these visualizations:

1. Bar chart of totals per category to compare magnitudes.
2. Line chart over the datetime column to show the trend.
3. Pie chart of the category share of the total.

Visualization_Coder, please produce the ECharts configurations.`

// coderReply carries the terminating chart configuration.
const coderReply = "Here is the configuration:\n\n```javascript\n" +
	`{
  "title": {"text": "Totals by Category"},
  "tooltip": {},
  "xAxis": {"type": "category", "data": ["A", "B", "C"]},
  "yAxis": {"type": "value"},
  "series": [{"type": "bar", "data": [10, 20, 30]}]
}` + "\n```\n"

// handleChatCompletions inspects the system prompt to decide which
// agent is asking and returns that agent's scripted reply.
func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	system := ""
	if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
		system = req.Messages[0].Content
	}

	reply := coderReply
	if strings.Contains(system, "data analyst") {
		reply = analystReply
	}

	slog.Info("chat completion", "model", req.Model, "messages", len(req.Messages), "coder", reply == coderReply)

	resp := map[string]any{
		"id":      fmt.Sprintf("chatcmpl-mock-%d", time.Now().UnixNano()),
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]any{
			{
				"index": 0,
				"message": map[string]any{
					"role":    "assistant",
					"content": reply,
				},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     64,
			"completion_tokens": 128,
			"total_tokens":      192,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func handleModels(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-analyst", "object": "model", "owned_by": "mock"},
			{"id": "mock-coder", "object": "model", "owned_by": "mock"},
		},
	})
}
