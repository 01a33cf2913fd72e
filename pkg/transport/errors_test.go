package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/agentviz/agentviz/pkg/api"
)

func TestHTTPStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  *api.APIError
		want int
	}{
		{"invalid request", api.NewInvalidRequestError("prompt", "bad"), http.StatusBadRequest},
		{"dataset error", api.NewDatasetError("unreadable"), http.StatusBadRequest},
		{"not found", api.NewNotFoundError("missing"), http.StatusNotFound},
		{"too many requests", api.NewTooManyRequestsError("slow down"), http.StatusTooManyRequests},
		{"model error", api.NewModelError("backend down"), http.StatusBadGateway},
		{"server error", api.NewServerError("boom"), http.StatusInternalServerError},
		{"execution error", api.NewExecutionError("failed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError(%s) = %d, want %d", tt.err.Type, got, tt.want)
			}
		})
	}
}

func TestWriteAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAPIError(rec, api.NewNotFoundError("job job_x not found"))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Error == nil || body.Error.Type != api.ErrorTypeNotFound {
		t.Errorf("error = %+v, want not_found", body.Error)
	}
}
