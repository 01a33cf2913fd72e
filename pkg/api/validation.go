package api

import (
	"fmt"
	"strings"
)

// ValidationConfig holds configurable limits for request validation.
type ValidationConfig struct {
	MaxPromptLength  int
	MaxDatasetSize   int64
	AllowedExtension string
}

// DefaultValidationConfig returns a ValidationConfig with sensible defaults.
func DefaultValidationConfig() ValidationConfig {
	return ValidationConfig{
		MaxPromptLength:  8 * 1024,
		MaxDatasetSize:   50 * 1024 * 1024, // 50MB
		AllowedExtension: ".csv",
	}
}

// ValidateVisualizationRequest checks a VisualizationRequest for validity. It
// returns an *APIError describing the first validation failure, or nil if the
// request is valid.
func ValidateVisualizationRequest(req *VisualizationRequest, cfg ValidationConfig) *APIError {
	if strings.TrimSpace(req.Prompt) == "" {
		return NewInvalidRequestError("prompt", "prompt is required")
	}

	if cfg.MaxPromptLength > 0 && len(req.Prompt) > cfg.MaxPromptLength {
		return NewInvalidRequestError("prompt",
			fmt.Sprintf("prompt exceeds maximum of %d bytes", cfg.MaxPromptLength))
	}

	if req.AnalystModel == "" {
		return NewInvalidRequestError("analyst_model", "analyst_model is required")
	}

	if req.CoderModel == "" {
		return NewInvalidRequestError("coder_model", "coder_model is required")
	}

	return nil
}

// ValidateDatasetName checks an uploaded dataset filename. Only plain CSV
// filenames are accepted; anything with a path separator is rejected to keep
// uploads confined to the upload directory.
func ValidateDatasetName(name string, cfg ValidationConfig) *APIError {
	if name == "" {
		return NewInvalidRequestError("file", "filename is required")
	}

	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return NewInvalidRequestError("file", "filename must not contain path separators")
	}

	if cfg.AllowedExtension != "" && !strings.HasSuffix(strings.ToLower(name), cfg.AllowedExtension) {
		return NewInvalidRequestError("file",
			fmt.Sprintf("filename must have the %s extension", cfg.AllowedExtension))
	}

	return nil
}
