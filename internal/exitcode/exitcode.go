package exitcode

import (
	"errors"
	"os"
	"strings"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// CorruptState indicates the task store could not be loaded
	CorruptState = 3

	// NotFound indicates an unknown task id
	NotFound = 4

	// ConfigError indicates invalid or unreadable configuration
	ConfigError = 5

	// NetworkError indicates a failed text generation or database call
	NetworkError = 6

	// Interrupted indicates the run was cancelled by SIGINT or SIGTERM
	Interrupted = 130
)

// Usage marks err as a usage error
func Usage(err error) error {
	if err == nil {
		return nil
	}
	return &usageError{err: err}
}

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Coded errors map by
// category; cobra's own argument and flag errors are usage errors.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return UsageError
	}

	code := string(agenterrors.CodeOf(err))
	switch {
	case code == string(agenterrors.ErrCodeStoreCorrupt):
		return CorruptState
	case code == string(agenterrors.ErrCodeTaskNotFound):
		return NotFound
	case code == string(agenterrors.ErrCodeTaskInvalid):
		return UsageError
	case strings.HasPrefix(code, "CONFIG-"):
		return ConfigError
	case strings.HasPrefix(code, "GATEWAY-"):
		return NetworkError
	case code != "":
		return GeneralError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors reported by cobra
	for _, marker := range []string{"unknown command", "unknown flag", "unknown shorthand flag", "invalid argument", "required flag", "accepts ", "requires at least", "flag needs an argument"} {
		if strings.Contains(errMsg, marker) {
			return UsageError
		}
	}

	// Network errors
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no route to host") {
		return NetworkError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case CorruptState:
		return "Task store is corrupt"
	case NotFound:
		return "Task not found"
	case ConfigError:
		return "Configuration error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
