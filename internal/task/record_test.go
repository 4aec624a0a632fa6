package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/felixgeelhaar/pmagent/internal/domain"
)

func validRecord() Record {
	return Record{
		ID:             "TASK-0001",
		Title:          "Offline mode",
		Description:    "Cache responses",
		Priority:       "high",
		Status:         "in_progress",
		Platform:       "ios",
		EstimatedHours: 6,
		Dependencies:   []string{"TASK-0042"},
		Tags:           []string{},
		CreatedAt:      "2025-03-01T10:00:00Z",
		UpdatedAt:      "2025-03-02T10:00:00.5Z",
	}
}

func TestRecord_NullOptionals(t *testing.T) {
	tk, err := FromRecord("TASK-0001", validRecord())
	require.NoError(t, err)

	data, err := json.Marshal(tk.ToRecord())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"assigned_to":null`)
	assert.Contains(t, string(data), `"due_date":null`)
	assert.Contains(t, string(data), `"tags":[]`)
}

func TestFromRecord_ToleratesDanglingDependenciesAndFreeFormPlatform(t *testing.T) {
	r := validRecord()
	r.Platform = "web"
	tk, err := FromRecord(r.ID, r)
	require.NoError(t, err)
	assert.Equal(t, domain.Platform("web"), tk.Platform)
	assert.Equal(t, []domain.TaskID{"TASK-0042"}, tk.Dependencies)
}

func TestFromRecord_CollectsEveryProblem(t *testing.T) {
	r := validRecord()
	r.Priority = "urgent"
	r.Status = "done"
	r.EstimatedHours = -2
	r.CreatedAt = "yesterday"

	_, err := FromRecord("TASK-0099", r)
	require.Error(t, err)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "TASK-0099", recErr.Key)
	// key mismatch, priority, status, hours, created_at
	assert.Len(t, recErr.Problems, 5)
	assert.Contains(t, err.Error(), "urgent")
}

func TestFromRecord_UpdatedBeforeCreated(t *testing.T) {
	r := validRecord()
	r.CreatedAt = "2026-10-10T10:00:00Z"
	r.UpdatedAt = "2026-01-01T10:00:00Z"

	_, err := FromRecord(r.ID, r)
	require.Error(t, err)

	var recErr *RecordError
	require.ErrorAs(t, err, &recErr)
	require.Len(t, recErr.Problems, 1)
	assert.Contains(t, recErr.Problems[0], "earlier than created_at")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "2025-03-01T10:00:00Z"},
		{in: "2025-03-01T10:00:00.123456789+02:00"},
		{in: "2025-03-01T10:00:00.123456"},
		{in: "2025-03-01T10:00:00"},
		{in: "2025-03-01"},
		{in: "", wantErr: true},
		{in: "03/01/2025", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTimestamp_NaiveIsLocal(t *testing.T) {
	ts, err := ParseTimestamp("2025-03-01T10:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Local, ts.Location())
}

func TestInvalidRecordsError(t *testing.T) {
	err := InvalidRecordsError{
		{Key: "TASK-0001", Problems: []string{"priority: bad"}},
		{Key: "TASK-0005", Problems: []string{"status: bad"}},
	}
	assert.Equal(t, []string{"TASK-0001", "TASK-0005"}, err.Keys())
	assert.Contains(t, err.Error(), "2 invalid record(s)")
	assert.Contains(t, err.Error(), "TASK-0005")
}

func genTask() *rapid.Generator[*Task] {
	return rapid.Custom(func(t *rapid.T) *Task {
		created := time.Unix(rapid.Int64Range(0, 4_000_000_000).Draw(t, "created"), rapid.Int64Range(0, 999_999_999).Draw(t, "nanos")).UTC()
		tk := &Task{
			ID:             domain.TaskIDFromSequence(rapid.IntRange(1, 99999).Draw(t, "seq")),
			Title:          rapid.StringMatching(`[ -~]{0,40}`).Draw(t, "title"),
			Description:    rapid.StringMatching(`[ -~]{0,80}`).Draw(t, "description"),
			Priority:       rapid.SampledFrom(domain.Priorities).Draw(t, "priority"),
			Status:         rapid.SampledFrom(domain.Statuses).Draw(t, "status"),
			Platform:       rapid.SampledFrom([]domain.Platform{domain.PlatformIOS, domain.PlatformAndroid, domain.PlatformBoth}).Draw(t, "platform"),
			EstimatedHours: float64(rapid.IntRange(0, 400).Draw(t, "hours")) / 4,
			Dependencies:   []domain.TaskID{},
			Tags:           rapid.SliceOf(rapid.StringMatching(`[a-z]{1,8}`)).Draw(t, "tags"),
			CreatedAt:      created,
			UpdatedAt:      created.Add(time.Duration(rapid.Int64Range(0, 1_000_000).Draw(t, "delta")) * time.Second),
		}
		if tk.Tags == nil {
			tk.Tags = []string{}
		}
		if rapid.Bool().Draw(t, "assigned") {
			who := rapid.StringMatching(`[a-z]{3,10}`).Draw(t, "assignee")
			tk.AssignedTo = &who
		}
		if rapid.Bool().Draw(t, "due") {
			due := created.Add(48 * time.Hour)
			tk.DueDate = &due
		}
		return tk
	})
}

// TestRecord_RoundTrip checks encode then decode yields an equal task
func TestRecord_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		orig := genTask().Draw(rt, "task")

		data, err := json.Marshal(orig.ToRecord())
		if err != nil {
			rt.Fatalf("marshal: %v", err)
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			rt.Fatalf("unmarshal: %v", err)
		}
		got, err := FromRecord(string(orig.ID), rec)
		if err != nil {
			rt.Fatalf("decode: %v", err)
		}

		if got.ID != orig.ID || got.Title != orig.Title || got.Description != orig.Description ||
			got.Priority != orig.Priority || got.Status != orig.Status || got.Platform != orig.Platform ||
			got.EstimatedHours != orig.EstimatedHours {
			rt.Fatalf("scalar fields differ: %+v vs %+v", got, orig)
		}
		if !got.CreatedAt.Equal(orig.CreatedAt) || !got.UpdatedAt.Equal(orig.UpdatedAt) {
			rt.Fatalf("timestamps differ")
		}
		if (got.AssignedTo == nil) != (orig.AssignedTo == nil) || (got.DueDate == nil) != (orig.DueDate == nil) {
			rt.Fatalf("optional presence differs")
		}
		if len(got.Tags) != len(orig.Tags) {
			rt.Fatalf("tags differ: %v vs %v", got.Tags, orig.Tags)
		}
	})
}
