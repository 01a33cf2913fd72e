package groq

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agentviz/agentviz/pkg/api"
)

// mapHTTPError converts a non-2xx response into an APIError, pulling a
// descriptive message out of the error envelope when one is present.
func mapHTTPError(resp *http.Response) *api.APIError {
	message := extractErrorMessage(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		if message == "" {
			message = "invalid request to model backend"
		}
		return api.NewInvalidRequestError("", message)

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "model backend authentication failed"
		}
		return api.NewModelError(message)

	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "model not found"
		}
		return api.NewNotFoundError(message)

	case resp.StatusCode == http.StatusTooManyRequests:
		if message == "" {
			message = "model backend rate limit exceeded"
		}
		return api.NewTooManyRequestsError(message)

	default:
		if message == "" {
			message = fmt.Sprintf("model backend error (HTTP %d)", resp.StatusCode)
		}
		return api.NewServerError(message)
	}
}

// mapNetworkError converts a network-level error (connection refused,
// timeout, DNS failure) into an APIError.
func mapNetworkError(err error) *api.APIError {
	return api.NewServerError(fmt.Sprintf("model backend connection error: %s", err.Error()))
}

// extractErrorMessage tries to parse the body as an error envelope.
func extractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp chatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	return ""
}
