package ux

import (
	"fmt"
	"strings"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a suggestion to errors that carry none. Coded errors
// already list their own suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}
	if agenterrors.CodeOf(err) != "" {
		return err
	}

	errMsg := err.Error()

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check file permissions on the data and reports directories")
	}

	// Database errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that PostgreSQL is running and the --dsn host and port are correct")
	}
	if strings.Contains(errMsg, "password authentication failed") {
		return NewErrorWithSuggestion(err,
			"Check the user and password in the --dsn connection string")
	}

	// Providers file
	if strings.Contains(errMsg, "providers file") {
		return NewErrorWithSuggestion(err,
			"Fix gateway.providers_file or clear it to use ANTHROPIC_API_KEY / OPENAI_API_KEY directly")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
