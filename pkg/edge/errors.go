package edge

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the remote platform has no resource for the
// given identifier
var ErrNotFound = errors.New("resource not found")

// APIError represents an error response from the gateway management API
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("edge api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("edge api error %d: %s", e.StatusCode, e.Message)
}

// IsAPIError checks if an error is an APIError and returns it
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
