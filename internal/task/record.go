package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
)

// TimestampLayout is the layout timestamps are written with
const TimestampLayout = time.RFC3339Nano

// naiveLayouts are accepted on read for records written without a zone
// offset; they are interpreted in the local zone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Record is the on-disk JSON shape of a task. Enums are lowercase labels,
// timestamps are strings and absent optionals are null.
type Record struct {
	ID             string   `json:"id" yaml:"id"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	Priority       string   `json:"priority" yaml:"priority"`
	Status         string   `json:"status" yaml:"status"`
	Platform       string   `json:"platform" yaml:"platform"`
	EstimatedHours float64  `json:"estimated_hours" yaml:"estimated_hours"`
	AssignedTo     *string  `json:"assigned_to" yaml:"assigned_to"`
	DueDate        *string  `json:"due_date" yaml:"due_date"`
	Dependencies   []string `json:"dependencies" yaml:"dependencies"`
	Tags           []string `json:"tags" yaml:"tags"`
	CreatedAt      string   `json:"created_at" yaml:"created_at"`
	UpdatedAt      string   `json:"updated_at" yaml:"updated_at"`
}

// RecordError lists everything wrong with one persisted record
type RecordError struct {
	Key      string
	Problems []string
}

// Error implements the error interface
func (e *RecordError) Error() string {
	return fmt.Sprintf("record %q: %s", e.Key, strings.Join(e.Problems, "; "))
}

// InvalidRecordsError collects every bad record found in one load
type InvalidRecordsError []*RecordError

// Error implements the error interface
func (e InvalidRecordsError) Error() string {
	lines := make([]string, 0, len(e))
	for _, r := range e {
		lines = append(lines, r.Error())
	}
	return fmt.Sprintf("%d invalid record(s):\n  %s", len(e), strings.Join(lines, "\n  "))
}

// Keys returns the store keys of the bad records in the order found
func (e InvalidRecordsError) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, r := range e {
		keys = append(keys, r.Key)
	}
	return keys
}

// ToRecord converts t to its persisted shape
func (t *Task) ToRecord() Record {
	r := Record{
		ID:             string(t.ID),
		Title:          t.Title,
		Description:    t.Description,
		Priority:       string(t.Priority),
		Status:         string(t.Status),
		Platform:       string(t.Platform),
		EstimatedHours: t.EstimatedHours,
		AssignedTo:     t.AssignedTo,
		Dependencies:   make([]string, 0, len(t.Dependencies)),
		Tags:           make([]string, 0, len(t.Tags)),
		CreatedAt:      t.CreatedAt.Format(TimestampLayout),
		UpdatedAt:      t.UpdatedAt.Format(TimestampLayout),
	}
	if t.DueDate != nil {
		s := t.DueDate.Format(TimestampLayout)
		r.DueDate = &s
	}
	for _, d := range t.Dependencies {
		r.Dependencies = append(r.Dependencies, string(d))
	}
	r.Tags = append(r.Tags, t.Tags...)
	return r
}

// FromRecord decodes a record stored under key. Every problem in the record
// is reported together in a *RecordError.
func FromRecord(key string, r Record) (*Task, error) {
	var problems []string
	fail := func(field string, err error) {
		problems = append(problems, fmt.Sprintf("%s: %v", field, err))
	}

	if r.ID != key {
		problems = append(problems, fmt.Sprintf("id: %q does not match key %q", r.ID, key))
	}
	priority, err := domain.NewPriority(r.Priority)
	if err != nil {
		fail("priority", err)
	}
	status, err := domain.NewStatus(r.Status)
	if err != nil {
		fail("status", err)
	}
	if r.EstimatedHours < 0 {
		problems = append(problems, fmt.Sprintf("estimated_hours: %v is negative", r.EstimatedHours))
	}
	createdAt, err := ParseTimestamp(r.CreatedAt)
	if err != nil {
		fail("created_at", err)
	}
	updatedAt, err := ParseTimestamp(r.UpdatedAt)
	if err != nil {
		fail("updated_at", err)
	} else if !createdAt.IsZero() && updatedAt.Before(createdAt) {
		problems = append(problems, fmt.Sprintf("updated_at: %s is earlier than created_at %s", r.UpdatedAt, r.CreatedAt))
	}

	var due *time.Time
	if r.DueDate != nil {
		d, err := ParseTimestamp(*r.DueDate)
		if err != nil {
			fail("due_date", err)
		} else {
			due = &d
		}
	}

	if len(problems) > 0 {
		return nil, &RecordError{Key: key, Problems: problems}
	}

	t := &Task{
		ID:             domain.TaskID(r.ID),
		Title:          r.Title,
		Description:    r.Description,
		Priority:       priority,
		Status:         status,
		Platform:       domain.Platform(r.Platform),
		EstimatedHours: r.EstimatedHours,
		AssignedTo:     r.AssignedTo,
		DueDate:        due,
		Dependencies:   make([]domain.TaskID, 0, len(r.Dependencies)),
		Tags:           make([]string, 0, len(r.Tags)),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	for _, d := range r.Dependencies {
		t.Dependencies = append(t.Dependencies, domain.TaskID(d))
	}
	t.Tags = append(t.Tags, r.Tags...)
	return t, nil
}

// ParseTimestamp parses an ISO-8601 timestamp, with or without a zone offset
func ParseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	for _, layout := range naiveLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}
