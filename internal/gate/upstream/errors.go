package upstream

import (
	"errors"
	"fmt"
)

// ErrNotConfigured reports a missing API base URL. It is raised before any
// network call so a deployment problem never masquerades as a credential
// failure.
var ErrNotConfigured = errors.New("upstream: API base URL is not configured")

// APIError is a non-2xx response from the marketplace API. Message carries
// the upstream "message" field when the body had one.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream: HTTP %d", e.StatusCode)
}

// AsAPIError unwraps err into an *APIError if it is one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
