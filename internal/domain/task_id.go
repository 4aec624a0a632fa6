package domain

import (
	"fmt"
	"regexp"
	"strconv"
)

// TaskID represents a unique identifier for a task, "TASK-" followed by a
// zero-padded sequence number of at least four digits.
type TaskID string

// taskIDPrefix is the fixed prefix of every generated id
const taskIDPrefix = "TASK-"

var taskIDPattern = regexp.MustCompile(`^TASK-(\d{4,})$`)

// NewTaskID creates a new TaskID value object with validation
func NewTaskID(value string) (TaskID, error) {
	id := TaskID(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// TaskIDFromSequence formats sequence number n as a TaskID (n=7 -> TASK-0007)
func TaskIDFromSequence(n int) TaskID {
	return TaskID(fmt.Sprintf("%s%04d", taskIDPrefix, n))
}

// Validate checks if the task ID is valid
func (t TaskID) Validate() error {
	if t == "" {
		return fmt.Errorf("task ID cannot be empty")
	}
	if !taskIDPattern.MatchString(string(t)) {
		return fmt.Errorf("task ID %q must look like TASK-0001", string(t))
	}
	return nil
}

// Sequence returns the numeric part of the id. ok is false for ids that do
// not follow the generated format.
func (t TaskID) Sequence() (n int, ok bool) {
	m := taskIDPattern.FindStringSubmatch(string(t))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// String returns the string representation
func (t TaskID) String() string {
	return string(t)
}
