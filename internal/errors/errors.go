package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Store errors (STORE-001 to STORE-099)
	ErrCodeStoreCorrupt ErrorCode = "STORE-001"

	// Task errors (TASK-001 to TASK-099)
	ErrCodeTaskNotFound ErrorCode = "TASK-001"
	ErrCodeTaskInvalid  ErrorCode = "TASK-002"

	// Gateway errors (GATEWAY-001 to GATEWAY-099)
	ErrCodeGatewayUnavailable ErrorCode = "GATEWAY-001"
	ErrCodeGatewayRequest     ErrorCode = "GATEWAY-002"
	ErrCodeGatewayTimeout     ErrorCode = "GATEWAY-003"
	ErrCodeGatewayMalformed   ErrorCode = "GATEWAY-004"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
	ErrCodeDirectoryFailed ErrorCode = "IO-003"
)

// AgentError represents an enhanced error with code, suggestions, and a cause
type AgentError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *AgentError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *AgentError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AgentError with the same code.
// This lets callers match on a category: errors.Is(err, errors.New(ErrCodeTaskNotFound, ""))
func (e *AgentError) Is(target error) bool {
	t, ok := target.(*AgentError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AgentError
func New(code ErrorCode, message string) *AgentError {
	return &AgentError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AgentError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *AgentError {
	return &AgentError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *AgentError) WithSuggestion(suggestion string) *AgentError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *AgentError) WithSuggestions(suggestions ...string) *AgentError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// CodeOf returns the code of the outermost AgentError in err's chain,
// or the empty code if there is none.
func CodeOf(err error) ErrorCode {
	var agentErr *AgentError
	if stderrors.As(err, &agentErr) {
		return agentErr.Code
	}
	return ""
}

// HasCode reports whether any AgentError in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AgentError{Code: code})
}

// Common error constructors for frequently used errors

// NewCorruptStateError creates a corrupt task store error carrying every bad record
func NewCorruptStateError(path string, cause error) *AgentError {
	return Wrap(ErrCodeStoreCorrupt, fmt.Sprintf("task store is corrupt: %s", path), cause).
		WithSuggestion("Fix or remove the listed records in the task store file").
		WithSuggestion("Valid priorities: critical, high, medium, low").
		WithSuggestion("Valid statuses: todo, in_progress, review, completed, blocked")
}

// NewTaskNotFoundError creates an unknown task id error
func NewTaskNotFoundError(id string) *AgentError {
	return New(ErrCodeTaskNotFound, fmt.Sprintf("task %s not found", id)).
		WithSuggestion("Run 'pmagent list-tasks' to see existing task ids")
}

// NewInvalidCapacityError creates an error for a sprint with no usable capacity
func NewInvalidCapacityError(durationDays, hoursPerDay int) *AgentError {
	return New(ErrCodeConfigInvalid,
		fmt.Sprintf("sprint capacity must be positive (sprint_duration_days=%d, work_hours_per_day=%d)", durationDays, hoursPerDay)).
		WithSuggestion("Set sprint_duration_days and work_hours_per_day to values greater than zero in config/agent_config.json")
}

// NewGatewayUnavailableError creates an error for a missing text generation backend
func NewGatewayUnavailableError(provider string) *AgentError {
	return New(ErrCodeGatewayUnavailable, fmt.Sprintf("text generation provider unavailable: %s", provider)).
		WithSuggestion(fmt.Sprintf("Set the %s_API_KEY environment variable", strings.ToUpper(provider))).
		WithSuggestion("Check gateway.provider in config/agent_config.json")
}

// NewFileWriteError creates a persistence failure error
func NewFileWriteError(path string, cause error) *AgentError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write %s", path), cause).
		WithSuggestion("Check that the directory exists and is writable").
		WithSuggestion("In-memory state may differ from disk until the next successful save")
}

// NewFileReadError creates a read failure error
func NewFileReadError(path string, cause error) *AgentError {
	return Wrap(ErrCodeFileReadFailed, fmt.Sprintf("failed to read %s", path), cause).
		WithSuggestion("Verify the file exists and you have read permissions")
}
