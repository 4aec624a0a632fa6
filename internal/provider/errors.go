package provider

import "fmt"

// HTTPError is a non-200 answer from a provider API
type HTTPError struct {
	Provider   string
	StatusCode int
	Message    string
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: http error %d: %s", e.Provider, e.StatusCode, e.Message)
}

// Retryable reports whether the status is one a later attempt might not hit
func (e *HTTPError) Retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
