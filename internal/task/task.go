// Package task defines the task entity and its persisted record format.
package task

import (
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
)

// Default values applied when a task is created without them
const (
	DefaultPlatform       = domain.PlatformBoth
	DefaultPriority       = domain.PriorityMedium
	DefaultEstimatedHours = 4.0
)

// Task is a unit of development work tracked by the store.
type Task struct {
	ID             domain.TaskID
	Title          string
	Description    string
	Priority       domain.Priority
	Status         domain.Status
	Platform       domain.Platform
	EstimatedHours float64
	AssignedTo     *string
	DueDate        *time.Time
	Dependencies   []domain.TaskID
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Params holds the caller-supplied fields of a new task. Zero values are
// replaced by the defaults.
type Params struct {
	Title          string
	Description    string
	Platform       domain.Platform
	Priority       domain.Priority
	EstimatedHours *float64
	AssignedTo     *string
	DueDate        *time.Time
	Dependencies   []domain.TaskID
	Tags           []string
}

// New builds a todo task with both timestamps set to now
func New(id domain.TaskID, p Params, now time.Time) (*Task, error) {
	t := &Task{
		ID:             id,
		Title:          p.Title,
		Description:    p.Description,
		Priority:       p.Priority,
		Status:         domain.StatusTodo,
		Platform:       p.Platform,
		EstimatedHours: DefaultEstimatedHours,
		AssignedTo:     p.AssignedTo,
		DueDate:        p.DueDate,
		Dependencies:   slices.Clone(p.Dependencies),
		Tags:           slices.Clone(p.Tags),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if t.Platform == "" {
		t.Platform = DefaultPlatform
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if t.Dependencies == nil {
		t.Dependencies = []domain.TaskID{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the invariants every stored task satisfies
func (t *Task) Validate() error {
	var problems []string
	if t.ID == "" {
		problems = append(problems, "id: cannot be empty")
	}
	if strings.TrimSpace(t.Title) == "" {
		problems = append(problems, "title: cannot be empty")
	}
	if err := t.Priority.Validate(); err != nil {
		problems = append(problems, "priority: "+err.Error())
	}
	if err := t.Status.Validate(); err != nil {
		problems = append(problems, "status: "+err.Error())
	}
	if t.EstimatedHours < 0 {
		problems = append(problems, "estimated_hours: cannot be negative")
	}
	if t.UpdatedAt.Before(t.CreatedAt) {
		problems = append(problems, "updated_at: earlier than created_at")
	}
	if len(problems) > 0 {
		return &RecordError{Key: string(t.ID), Problems: problems}
	}
	return nil
}

// SetStatus moves the task to status and stamps UpdatedAt.
// UpdatedAt never moves before CreatedAt.
func (t *Task) SetStatus(status domain.Status, now time.Time) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if now.Before(t.CreatedAt) {
		now = t.CreatedAt
	}
	t.Status = status
	t.UpdatedAt = now
	return nil
}

// IsStale reports whether an in-progress task has not been touched since
// before now minus threshold
func (t *Task) IsStale(now time.Time, threshold time.Duration) bool {
	return t.Status == domain.StatusInProgress && t.UpdatedAt.Before(now.Add(-threshold))
}

// Clone returns a deep copy so callers cannot mutate store state
func (t *Task) Clone() *Task {
	c := *t
	if t.AssignedTo != nil {
		v := *t.AssignedTo
		c.AssignedTo = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		c.DueDate = &v
	}
	c.Dependencies = slices.Clone(t.Dependencies)
	c.Tags = slices.Clone(t.Tags)
	return &c
}
