// Package store keeps the task set in memory and persists it as a JSON
// object of id to task record.
package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/fsutil"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// Store is the single source of truth for tasks. It is not safe for
// concurrent use; the agent runs single-threaded.
type Store struct {
	path     string
	metaPath string

	tasks  map[domain.TaskID]*task.Task
	order  []domain.TaskID
	nextID int

	clock   func() time.Time
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the time source used to stamp tasks
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New creates an empty store backed by path. Call Load to read the file.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:     path,
		metaPath: MetaPath(path),
		tasks:    make(map[domain.TaskID]*task.Task),
		nextID:   1,
		clock:    time.Now,
		logger:   log.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open creates a store backed by path and loads it
func Open(path string, opts ...Option) (*Store, error) {
	s := New(path, opts...)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the store file path
func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory state with the file contents. A missing file
// is an empty store. If any record is invalid nothing is loaded and the
// returned STORE-001 error lists every bad record.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return agenterrors.NewFileReadError(s.path, err)
	}

	entries, err := decodeEntries(data)
	if err != nil {
		return agenterrors.NewCorruptStateError(s.path, err)
	}
	tasks, err := decodeTasks(entries)
	if err != nil {
		var invalid task.InvalidRecordsError
		if errors.As(err, &invalid) {
			s.logger.Error("task store has invalid records", "path", s.path, "count", len(invalid), "keys", invalid.Keys())
		}
		return agenterrors.NewCorruptStateError(s.path, err)
	}

	m, err := readMeta(s.metaPath)
	if err != nil {
		s.logger.Warn("ignoring unreadable store metadata", "path", s.metaPath, "error", err)
		m = meta{}
	}
	if len(data) > 0 && m.Checksum != "" && m.Checksum != checksum(data) {
		s.logger.Warn("store modified outside pmagent", "path", s.path)
	}

	s.tasks = make(map[domain.TaskID]*task.Task, len(tasks))
	s.order = make([]domain.TaskID, 0, len(tasks))
	highest := 0
	for _, t := range tasks {
		s.tasks[t.ID] = t
		s.order = append(s.order, t.ID)
		if n, ok := t.ID.Sequence(); ok && n > highest {
			highest = n
		}
	}
	s.nextID = max(m.NextID, highest+1, len(tasks)+1)

	s.logger.Debug("task store loaded", "path", s.path, "tasks", len(tasks), "next_id", s.nextID)
	return nil
}

// Save writes every task in insertion order, atomically. Two saves with no
// mutation in between produce identical bytes.
func (s *Store) Save() error {
	start := time.Now()
	err := s.save()
	s.metrics.RecordStoreSave(time.Since(start), err)
	if err != nil {
		s.metrics.RecordError(string(agenterrors.CodeOf(err)))
	}
	return err
}

func (s *Store) save() error {
	data, err := encodeTasks(s.list())
	if err != nil {
		return agenterrors.NewFileWriteError(s.path, err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return agenterrors.NewFileWriteError(s.path, err)
	}
	if err := writeMeta(s.metaPath, meta{NextID: s.nextID, Checksum: checksum(data)}); err != nil {
		return agenterrors.NewFileWriteError(s.metaPath, err)
	}
	return nil
}

// Create allocates the next id, inserts a todo task and persists the store.
// If persisting fails the task is not kept, but its id is never reused.
func (s *Store) Create(p task.Params) (*task.Task, error) {
	id := s.allocateID()
	t, err := task.New(id, p, s.clock())
	if err != nil {
		return nil, agenterrors.Wrap(agenterrors.ErrCodeTaskInvalid, "invalid task", err)
	}

	s.tasks[id] = t
	s.order = append(s.order, id)
	if err := s.Save(); err != nil {
		delete(s.tasks, id)
		s.order = s.order[:len(s.order)-1]
		return nil, err
	}

	s.metrics.RecordTaskCreated()
	s.logger.Info("task created", "task_id", id, "title", t.Title, "priority", t.Priority, "platform", t.Platform)
	return t.Clone(), nil
}

// allocateID returns the next unused generated id and advances the counter
func (s *Store) allocateID() domain.TaskID {
	for {
		id := domain.TaskIDFromSequence(s.nextID)
		s.nextID++
		if _, exists := s.tasks[id]; !exists {
			return id
		}
	}
}

// UpdateStatus sets the status of task id and persists the store. An unknown
// id returns a TASK-001 error and leaves the store unchanged.
func (s *Store) UpdateStatus(id domain.TaskID, status domain.Status) (*task.Task, error) {
	if err := status.Validate(); err != nil {
		return nil, agenterrors.Wrap(agenterrors.ErrCodeTaskInvalid, "invalid status", err)
	}

	t, ok := s.tasks[id]
	if !ok {
		s.metrics.RecordStatusUpdate(string(status), "not_found")
		s.logger.Warn("status update for unknown task", "task_id", id, "status", status)
		return nil, agenterrors.NewTaskNotFoundError(string(id))
	}

	prevStatus, prevUpdated := t.Status, t.UpdatedAt
	if err := t.SetStatus(status, s.clock()); err != nil {
		return nil, agenterrors.Wrap(agenterrors.ErrCodeTaskInvalid, "invalid status", err)
	}
	if err := s.Save(); err != nil {
		t.Status, t.UpdatedAt = prevStatus, prevUpdated
		return nil, err
	}

	s.metrics.RecordStatusUpdate(string(status), "updated")
	s.logger.Info("task status updated", "task_id", id, "from", prevStatus, "to", status)
	return t.Clone(), nil
}

// Get returns a copy of task id, or a TASK-001 error
func (s *Store) Get(id domain.TaskID) (*task.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, agenterrors.NewTaskNotFoundError(string(id))
	}
	return t.Clone(), nil
}

// List returns copies of every task in insertion order
func (s *Store) List() []*task.Task {
	out := make([]*task.Task, 0, len(s.order))
	for _, t := range s.list() {
		out = append(out, t.Clone())
	}
	return out
}

// list returns the live tasks in insertion order
func (s *Store) list() []*task.Task {
	out := make([]*task.Task, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.tasks[id])
	}
	return out
}

// Len returns the number of tasks
func (s *Store) Len() int {
	return len(s.order)
}

// NextID returns the id the next Create will allocate
func (s *Store) NextID() domain.TaskID {
	n := s.nextID
	for {
		id := domain.TaskIDFromSequence(n)
		if _, exists := s.tasks[id]; !exists {
			return id
		}
		n++
	}
}

// String implements fmt.Stringer
func (s *Store) String() string {
	return fmt.Sprintf("Store(%s, %d tasks)", s.path, len(s.order))
}
