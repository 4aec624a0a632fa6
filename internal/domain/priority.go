package domain

import (
	"fmt"
	"strings"
)

// Priority represents a task priority level.
// This is a value object that enforces valid priority values.
type Priority string

// Valid priority levels
const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists every valid priority in severity order, most severe first
var Priorities = []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}

// NewPriority creates a new Priority value object with validation
func NewPriority(value string) (Priority, error) {
	p := Priority(value)
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Validate checks if the priority is valid
func (p Priority) Validate() error {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	default:
		return fmt.Errorf("invalid priority %q: must be critical, high, medium, or low", string(p))
	}
}

// String returns the string representation
func (p Priority) String() string {
	return string(p)
}

// CompareLabel orders priorities by their string label, the order the sprint
// planner sorts by: critical < high < low < medium.
// Returns -1, 0 or +1.
func (p Priority) CompareLabel(other Priority) int {
	return strings.Compare(string(p), string(other))
}

// IsHigherThan checks if this priority is more severe than another
func (p Priority) IsHigherThan(other Priority) bool {
	return priorityRank(p) > priorityRank(other)
}

// IsLowerThan checks if this priority is less severe than another
func (p Priority) IsLowerThan(other Priority) bool {
	return priorityRank(p) < priorityRank(other)
}

// IsUrgent reports whether the priority makes a task sprint eligible
func (p Priority) IsUrgent() bool {
	return p == PriorityCritical || p == PriorityHigh
}

// priorityRank returns the numeric rank of a priority (higher = more severe)
func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
