package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/felixgeelhaar/pmagent/internal/task"
)

// rawEntry is one key/value pair of the top-level store object, in file order
type rawEntry struct {
	key   string
	value json.RawMessage
}

// decodeEntries reads the top-level JSON object and keeps its key order.
// Whitespace-only input is an empty store.
func decodeEntries(data []byte) ([]rawEntry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object of id to task, got %v", tok)
	}

	var entries []rawEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("invalid JSON for %q: %w", key, err)
		}
		entries = append(entries, rawEntry{key: key, value: value})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level object")
	}
	return entries, nil
}

// decodeTasks turns raw entries into tasks. Every bad record is collected;
// the returned error is a task.InvalidRecordsError when any record is bad.
func decodeTasks(entries []rawEntry) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	var invalid task.InvalidRecordsError

	for _, e := range entries {
		if seen[e.key] {
			invalid = append(invalid, &task.RecordError{Key: e.key, Problems: []string{"duplicate key"}})
			continue
		}
		seen[e.key] = true

		var rec task.Record
		if err := json.Unmarshal(e.value, &rec); err != nil {
			invalid = append(invalid, &task.RecordError{Key: e.key, Problems: []string{"malformed record: " + err.Error()}})
			continue
		}
		t, err := task.FromRecord(e.key, rec)
		if err != nil {
			if recErr, ok := err.(*task.RecordError); ok {
				invalid = append(invalid, recErr)
				continue
			}
			invalid = append(invalid, &task.RecordError{Key: e.key, Problems: []string{err.Error()}})
			continue
		}
		tasks = append(tasks, t)
	}

	if len(invalid) > 0 {
		return nil, invalid
	}
	return tasks, nil
}

// encodeTasks writes tasks as a JSON object keyed by id, in slice order,
// indented by two spaces. Equal input always yields equal bytes.
func encodeTasks(tasks []*task.Task) ([]byte, error) {
	if len(tasks) == 0 {
		return []byte("{}\n"), nil
	}

	var buf bytes.Buffer
	buf.WriteString("{\n")
	for i, t := range tasks {
		key, err := json.Marshal(string(t.ID))
		if err != nil {
			return nil, err
		}
		rec, err := json.MarshalIndent(t.ToRecord(), "  ", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", t.ID, err)
		}
		buf.WriteString("  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(rec)
		if i < len(tasks)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}
