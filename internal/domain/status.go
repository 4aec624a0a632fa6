package domain

import "fmt"

// Status represents where a task is in its lifecycle.
type Status string

// Valid statuses
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every valid status in workflow order
var Statuses = []Status{StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusBlocked}

// NewStatus creates a new Status value object with validation
func NewStatus(value string) (Status, error) {
	s := Status(value)
	if err := s.Validate(); err != nil {
		return "", err
	}
	return s, nil
}

// Validate checks if the status is valid
func (s Status) Validate() error {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusCompleted, StatusBlocked:
		return nil
	default:
		return fmt.Errorf("invalid status %q: must be todo, in_progress, review, completed, or blocked", string(s))
	}
}

// String returns the string representation
func (s Status) String() string {
	return string(s)
}

// IsOpen reports whether work on the task has not finished yet and it can be
// scheduled into a sprint
func (s Status) IsOpen() bool {
	return s == StatusTodo || s == StatusInProgress
}
