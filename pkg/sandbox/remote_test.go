package sandbox

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRemoteRunnerExecute(t *testing.T) {
	var gotReq ExecuteRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/execute" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ExecuteResponse{
			Figure: map[string]any{"data": []any{}},
			Output: "done",
			Code:   gotReq.Code,
		})
	}))
	defer server.Close()

	runner := NewRemoteRunner(server.URL)
	result, err := runner.Execute(context.Background(), "fig = px.bar(df)", "/data/sample.csv")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if gotReq.Code != "fig = px.bar(df)" || gotReq.DataPath != "/data/sample.csv" {
		t.Errorf("request = %+v", gotReq)
	}
	if result.Output != "done" || len(result.Figure) == 0 {
		t.Errorf("result = %+v", result)
	}
}

func TestRemoteRunnerCapacity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	runner := NewRemoteRunner(server.URL)
	_, err := runner.Execute(context.Background(), "x = 1", "")
	if err == nil || !strings.Contains(err.Error(), "capacity") {
		t.Errorf("err = %v, want capacity error", err)
	}
}

func TestRemoteRunnerServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "harness exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	runner := NewRemoteRunner(server.URL)
	_, err := runner.Execute(context.Background(), "x = 1", "")
	if err == nil || !strings.Contains(err.Error(), "HTTP 500") {
		t.Errorf("err = %v, want HTTP 500 error", err)
	}
	if err != nil && !strings.Contains(err.Error(), "harness exploded") {
		t.Errorf("err = %v, want server body included", err)
	}
}

func TestAcquiredRunnerReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ExecuteResponse{Output: "ok"})
	}))
	defer server.Close()

	released := false
	runner := NewAcquiredRunner(func(ctx context.Context) (string, func(), error) {
		return server.URL, func() { released = true }, nil
	})

	if _, err := runner.Execute(context.Background(), "x = 1", ""); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !released {
		t.Error("sandbox endpoint was not released after execution")
	}
}
