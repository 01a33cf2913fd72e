// Command mcp-server exposes the sandbox and dataset layers as MCP
// tools, so MCP-capable clients can run chart code and inspect datasets
// without going through the HTTP API.
//
// Configuration:
//
//	PORT                - Listen port (default: 8080)
//	AGENTVIZ_PYTHON_BIN - Python interpreter (default: python3)
//	AGENTVIZ_SANDBOX_TIMEOUT - Per-execution wall clock (default: 60s)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/agentviz/agentviz/pkg/dataset"
	"github.com/agentviz/agentviz/pkg/sandbox"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	pythonBin := os.Getenv("AGENTVIZ_PYTHON_BIN")
	if pythonBin == "" {
		pythonBin = "python3"
	}
	timeout := 60 * time.Second
	if v := os.Getenv("AGENTVIZ_SANDBOX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatalf("invalid AGENTVIZ_SANDBOX_TIMEOUT: %v", err)
		}
		timeout = d
	}

	runner := sandbox.NewRunner(pythonBin, timeout, 0, nil)

	server := mcp.NewServer(
		&mcp.Implementation{Name: "agentviz-mcp", Version: "v1.0.0"},
		nil,
	)

	type ExecuteInput struct {
		Code     string `json:"code" jsonschema_description:"Python chart code; assign the Plotly figure to a variable named 'fig'"`
		DataPath string `json:"data_path,omitempty" jsonschema_description:"Path to the CSV dataset loaded into 'df'"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute_chart_code",
		Description: "Executes Python visualization code in the sandbox and returns the captured figure, output, and error",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteInput) (*mcp.CallToolResult, struct{}, error) {
		result, err := runner.Execute(ctx, input.Code, input.DataPath)
		if err != nil {
			return nil, struct{}{}, err
		}
		payload, err := json.Marshal(result)
		if err != nil {
			return nil, struct{}{}, fmt.Errorf("encoding result: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
			IsError: result.Failed(),
		}, struct{}{}, nil
	})

	type SummaryInput struct {
		Path string `json:"path" jsonschema_description:"Path to the CSV dataset to summarize"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "dataset_summary",
		Description: "Loads a CSV dataset and returns its column types, sample values, and statistics",
	}, func(_ context.Context, _ *mcp.CallToolRequest, input SummaryInput) (*mcp.CallToolResult, struct{}, error) {
		table, err := dataset.Load(input.Path)
		if err != nil {
			return nil, struct{}{}, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: dataset.Summarize(table).Describe()}},
		}, struct{}{}, nil
	})

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	httpMux := http.NewServeMux()
	httpMux.Handle("/mcp", handler)
	httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	log.Printf("agentviz MCP server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, httpMux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
