package catalog

import (
	"errors"
	"fmt"
)

// APIError represents a non-2xx response from the catalog API. It carries
// enough context to diagnose the failure without re-running with verbose
// logging.
type APIError struct {
	// Method is the HTTP method of the failed request.
	Method string
	// URL is the request URL.
	URL string
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Body is the raw response body.
	Body string
}

// Error returns a string representation of the API error.
func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error: %s %s returned %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// IsAPIError checks whether err is (or wraps) an APIError, returning it.
func IsAPIError(err error) (*APIError, bool) {
	var apiError *APIError
	ok := errors.As(err, &apiError)
	return apiError, ok
}

// DecodeError represents a JSON decode failure on an otherwise-successful
// response. It is distinct from APIError so callers can tell a malformed
// payload apart from a server-reported failure.
type DecodeError struct {
	// URL is the request URL whose response failed to decode.
	URL string
	// Cause is the underlying decode error.
	Cause error
}

// Error returns a string representation of the decode error.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("catalog API decode error for %s: %v", e.URL, e.Cause)
}

// Unwrap exposes the underlying decode failure.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}
