package api

import (
	"strings"
	"testing"
)

func TestValidateVisualizationRequest(t *testing.T) {
	valid := func() *VisualizationRequest {
		return &VisualizationRequest{
			Prompt:       "show revenue by month",
			AnalystModel: "llama-3.3-70b-versatile",
			CoderModel:   "llama-3.3-70b-versatile",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*VisualizationRequest)
		wantParam string
	}{
		{"valid", func(r *VisualizationRequest) {}, ""},
		{"empty prompt", func(r *VisualizationRequest) { r.Prompt = "" }, "prompt"},
		{"whitespace prompt", func(r *VisualizationRequest) { r.Prompt = "   " }, "prompt"},
		{"oversized prompt", func(r *VisualizationRequest) {
			r.Prompt = strings.Repeat("a", 8*1024+1)
		}, "prompt"},
		{"missing analyst model", func(r *VisualizationRequest) { r.AnalystModel = "" }, "analyst_model"},
		{"missing coder model", func(r *VisualizationRequest) { r.CoderModel = "" }, "coder_model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := ValidateVisualizationRequest(req, DefaultValidationConfig())
			if tt.wantParam == "" {
				if err != nil {
					t.Fatalf("ValidateVisualizationRequest() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateVisualizationRequest() = nil, want error")
			}
			if err.Param != tt.wantParam {
				t.Errorf("error param = %q, want %q", err.Param, tt.wantParam)
			}
		})
	}
}

func TestValidateDatasetName(t *testing.T) {
	cfg := DefaultValidationConfig()

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"valid", "sales.csv", false},
		{"valid uppercase extension", "Sales.CSV", false},
		{"empty", "", true},
		{"path traversal", "../etc/passwd.csv", true},
		{"slash", "dir/data.csv", true},
		{"backslash", `dir\data.csv`, true},
		{"wrong extension", "data.xlsx", true},
		{"no extension", "data", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatasetName(tt.file, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDatasetName(%q) error = %v, wantErr %v", tt.file, err, tt.wantErr)
			}
		})
	}
}
