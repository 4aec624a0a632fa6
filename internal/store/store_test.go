package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// stepClock returns a clock that advances one minute per call
func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "tasks.json")
	s, err := Open(path, WithClock(stepClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))))
	require.NoError(t, err)
	return s, path
}

func TestOpen_AbsentFileIsEmpty(t *testing.T) {
	s, path := newTestStore(t)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.List())
	assert.Equal(t, path, s.Path())
	assert.Equal(t, domain.TaskID("TASK-0001"), s.NextID())
}

func TestCreate_SequentialIDs(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 1; i <= 12; i++ {
		tk, err := s.Create(task.Params{Title: "task"})
		require.NoError(t, err)
		assert.Equal(t, domain.TaskIDFromSequence(i), tk.ID)
		assert.Equal(t, domain.StatusTodo, tk.Status)
		assert.Equal(t, tk.CreatedAt, tk.UpdatedAt)
	}
	assert.Equal(t, 12, s.Len())
}

func TestCreate_Persists(t *testing.T) {
	s, path := newTestStore(t)
	hours := 10.0
	who := "sam"
	created, err := s.Create(task.Params{
		Title:          "Login",
		Description:    "OAuth flow",
		Platform:       domain.PlatformIOS,
		Priority:       domain.PriorityCritical,
		EstimatedHours: &hours,
		AssignedTo:     &who,
		Tags:           []string{"auth"},
	})
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get(created.ID)
	require.NoError(t, err)

	assert.Equal(t, "Login", got.Title)
	assert.Equal(t, domain.PriorityCritical, got.Priority)
	assert.Equal(t, domain.PlatformIOS, got.Platform)
	assert.Equal(t, 10.0, got.EstimatedHours)
	assert.Equal(t, "sam", *got.AssignedTo)
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestCreate_RejectsInvalidParams(t *testing.T) {
	neg := -1.0
	tests := []struct {
		name   string
		params task.Params
	}{
		{"unknown priority", task.Params{Title: "x", Priority: "urgent"}},
		{"empty title", task.Params{Title: ""}},
		{"blank title", task.Params{Title: "  \t"}},
		{"negative hours", task.Params{Title: "x", EstimatedHours: &neg}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, path := newTestStore(t)
			_, err := s.Create(tt.params)
			require.Error(t, err)
			assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeTaskInvalid))
			assert.Equal(t, 0, s.Len())
			_, statErr := os.Stat(path)
			assert.True(t, os.IsNotExist(statErr), "nothing is persisted")
		})
	}
}

func TestCreate_IDsNotReusedAfterOutOfBandEdit(t *testing.T) {
	s, path := newTestStore(t)
	for i := 0; i < 3; i++ {
		_, err := s.Create(task.Params{Title: "task"})
		require.NoError(t, err)
	}

	// Drop TASK-0002 by hand; the next id must still be TASK-0004
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	delete(raw, "TASK-0002")
	edited, err := json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, edited, 0o644))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Len())

	tk, err := reopened.Create(task.Params{Title: "next"})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID("TASK-0004"), tk.ID)
}

func TestCreate_CounterSurvivesMissingSidecar(t *testing.T) {
	s, path := newTestStore(t)
	for i := 0; i < 5; i++ {
		_, err := s.Create(task.Params{Title: "task"})
		require.NoError(t, err)
	}
	require.NoError(t, os.Remove(MetaPath(path)))

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskID("TASK-0006"), reopened.NextID())
}

func TestSave_Idempotent(t *testing.T) {
	s, path := newTestStore(t)
	_, err := s.Create(task.Params{Title: "A", Description: "first"})
	require.NoError(t, err)
	_, err = s.Create(task.Params{Title: "B"})
	require.NoError(t, err)

	require.NoError(t, s.Save())
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, s.Save())
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second), "consecutive saves should be byte-identical")

	// Load then save also reproduces the bytes
	reopened, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, reopened.Save())
	third, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(third))
}

func TestSave_InsertionOrderAndNulls(t *testing.T) {
	s, path := newTestStore(t)
	for _, title := range []string{"first", "second", "third"} {
		_, err := s.Create(task.Params{Title: title})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, bytes.Index(data, []byte("TASK-0001")), bytes.Index(data, []byte("TASK-0002")))
	assert.Less(t, bytes.Index(data, []byte("TASK-0002")), bytes.Index(data, []byte("TASK-0003")))
	assert.Contains(t, text, `"assigned_to": null`)
	assert.Contains(t, text, `"due_date": null`)
	assert.Contains(t, text, `"status": "todo"`)
}

func TestLoad_PreservesFileOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{
  "TASK-0009": {"id": "TASK-0009", "title": "nine", "description": "", "priority": "low", "status": "todo", "platform": "ios",
    "estimated_hours": 1, "assigned_to": null, "due_date": null, "dependencies": [], "tags": [],
    "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"},
  "TASK-0002": {"id": "TASK-0002", "title": "two", "description": "", "priority": "high", "status": "blocked", "platform": "android",
    "estimated_hours": 2, "assigned_to": null, "due_date": null, "dependencies": ["TASK-0404"], "tags": [],
    "created_at": "2025-01-02T00:00:00", "updated_at": "2025-01-02T00:00:00"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Open(path)
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	assert.Equal(t, domain.TaskID("TASK-0009"), list[0].ID)
	assert.Equal(t, domain.TaskID("TASK-0002"), list[1].ID)
	assert.Equal(t, domain.TaskID("TASK-0010"), s.NextID())
}

func TestLoad_CorruptBatchListsEveryRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{
  "TASK-0001": {"id": "TASK-0001", "title": "ok", "priority": "high", "status": "todo", "platform": "ios",
    "estimated_hours": 1, "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"},
  "TASK-0002": {"id": "TASK-0002", "title": "bad priority", "priority": "urgent", "status": "todo", "platform": "ios",
    "estimated_hours": 1, "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"},
  "TASK-0003": {"id": "TASK-0003", "title": "bad status", "priority": "low", "status": "done", "platform": "ios",
    "estimated_hours": 1, "created_at": "2025-01-01T00:00:00Z", "updated_at": "2025-01-01T00:00:00Z"},
  "TASK-0004": {"id": "TASK-0004", "title": "bad time", "priority": "low", "status": "todo", "platform": "ios",
    "estimated_hours": 1, "created_at": "last tuesday", "updated_at": "2025-01-01T00:00:00Z"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(path)
	err := s.Load()
	require.Error(t, err)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeStoreCorrupt))

	var invalid task.InvalidRecordsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"TASK-0002", "TASK-0003", "TASK-0004"}, invalid.Keys())
	assert.Equal(t, 0, s.Len(), "nothing is loaded from a corrupt store")
}

func TestLoad_UpdatedBeforeCreatedIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `{
  "TASK-0001": {"id": "TASK-0001", "title": "rewound", "priority": "high", "status": "todo", "platform": "ios",
    "estimated_hours": 1, "created_at": "2026-10-10T10:00:00Z", "updated_at": "2026-01-01T10:00:00Z"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(path)
	err := s.Load()
	require.Error(t, err)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeStoreCorrupt))

	var invalid task.InvalidRecordsError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"TASK-0001"}, invalid.Keys())
	assert.Equal(t, 0, s.Len())
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"TASK-0001": {`), 0o644))

	_, err := Open(path)
	require.Error(t, err)
	assert.Equal(t, agenterrors.ErrCodeStoreCorrupt, agenterrors.CodeOf(err))
}

func TestLoad_TopLevelArrayIsCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := Open(path)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeStoreCorrupt))
}

func TestLoad_ChecksumMismatchWarns(t *testing.T) {
	var buf bytes.Buffer
	cfg := log.DefaultConfig()
	cfg.Output = log.NewOutput(&buf)
	cfg.Format = log.FormatJSON
	logger := log.New(cfg)

	s, path := newTestStore(t)
	_, err := s.Create(task.Params{Title: "A"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, append(data, '\n'), 0o644))

	_, err = Open(path, WithLogger(logger))
	require.NoError(t, err, "a checksum mismatch is not an error")
	assert.Contains(t, buf.String(), "store modified outside pmagent")
}

func TestUpdateStatus(t *testing.T) {
	s, path := newTestStore(t)
	created, err := s.Create(task.Params{Title: "A"})
	require.NoError(t, err)

	updated, err := s.UpdateStatus(created.ID, domain.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))

	reopened, err := Open(path)
	require.NoError(t, err)
	got, err := reopened.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)
}

func TestUpdateStatus_UnknownIDLeavesStoreUnchanged(t *testing.T) {
	_, m := metrics.NewRegistry()
	path := filepath.Join(t.TempDir(), "tasks.json")
	s, err := Open(path, WithMetrics(m))
	require.NoError(t, err)
	_, err = s.Create(task.Params{Title: "A"})
	require.NoError(t, err)

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = s.UpdateStatus("TASK-0999", domain.StatusCompleted)
	require.Error(t, err)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeTaskNotFound))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Equal(t, 1, s.Len())
}

func TestUpdateStatus_SaveFailureRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasks.json")
	s, err := Open(path)
	require.NoError(t, err)
	created, err := s.Create(task.Params{Title: "A"})
	require.NoError(t, err)

	// Replace the store file with a non-empty directory so rename fails
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "block"), nil, 0o644))

	_, err = s.UpdateStatus(created.ID, domain.StatusCompleted)
	require.Error(t, err)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeFileWriteFailed))

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, got.Status)
}

func TestList_ReturnsCopies(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Create(task.Params{Title: "A"})
	require.NoError(t, err)

	list := s.List()
	list[0].Title = "mutated"

	got, err := s.Get("TASK-0001")
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
}

func TestMetaPath(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "tasks.meta.json"), MetaPath(filepath.Join("data", "tasks.json")))
	assert.Equal(t, "store.meta.json", MetaPath("store"))
}
