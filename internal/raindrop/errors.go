package raindrop

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a non-success response from the Raindrop API.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"errorMessage"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("raindrop: %d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("raindrop: %d", e.StatusCode)
}

// IsNotFound returns true if the error is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}

	return apiErr
}
