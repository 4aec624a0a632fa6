package ux

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

func sampleTasks() TaskList {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return TaskList{
		{ID: "TASK-0001", Title: "Login screen", Priority: domain.PriorityHigh, Status: domain.StatusTodo, Platform: domain.PlatformIOS, EstimatedHours: 4, CreatedAt: now, UpdatedAt: now},
		{ID: "TASK-0002", Title: "Sync", Priority: domain.PriorityCritical, Status: domain.StatusBlocked, Platform: domain.PlatformBoth, EstimatedHours: 2.5, CreatedAt: now, UpdatedAt: now},
	}
}

func TestTaskList_RenderText(t *testing.T) {
	out := sampleTasks().RenderText(NewStyles(true))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("expected header, 2 rows and a footer, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "ID") || !strings.HasSuffix(lines[0], "TITLE") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "TASK-0001  high") || !strings.HasSuffix(lines[1], "Login screen") {
		t.Errorf("unexpected row %q", lines[1])
	}
	if !strings.Contains(lines[2], "2.5") {
		t.Errorf("row should show hours: %q", lines[2])
	}
	if lines[3] != "2 task(s)" {
		t.Errorf("unexpected footer %q", lines[3])
	}

	titleCol := strings.Index(lines[0], "TITLE")
	if strings.Index(lines[1], "Login screen") != titleCol {
		t.Errorf("title column not aligned:\n%s", out)
	}
}

func TestTaskList_Empty(t *testing.T) {
	out := TaskList(nil).RenderText(NewStyles(true))
	if out != "No tasks found\n" {
		t.Errorf("RenderText() = %q", out)
	}
}

func TestTaskList_Records(t *testing.T) {
	records := sampleTasks().Records()
	if len(records) != 2 || records[1].Status != "blocked" {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestTextFormatter_UsesRenderer(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("text", &FormatterOptions{Writer: &buf, NoColor: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Format(sampleTasks()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Login screen") {
		t.Errorf("output missing task title: %s", buf.String())
	}
}

func TestYAMLFormatter_TaskRecords(t *testing.T) {
	var buf bytes.Buffer
	f, err := NewFormatter("yaml", &FormatterOptions{Writer: &buf})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Format(sampleTasks().Records()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "estimated_hours: 2.5") {
		t.Errorf("yaml output should use record field names: %s", buf.String())
	}
}

func TestSummaryView_RenderText(t *testing.T) {
	summary := report.BuildSummary(sampleTasks(), time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	out := SummaryView{summary}.RenderText(NewStyles(true))

	for _, want := range []string{"Total tasks: 2", "Completed: 0 (0.0%)", "Sprint velocity: 40.0", "blocked", "android"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPlanView_RenderText(t *testing.T) {
	tasks := sampleTasks()
	plan := &sprint.Plan{
		SprintNumber:   3,
		StartDate:      "2025-03-10",
		EndDate:        "2025-03-24",
		Goals:          []string{"Ship login"},
		Tasks:          []task.Record{tasks[0].ToRecord()},
		EstimatedHours: 4,
		CapacityHours:  84,
		Utilization:    4.76,
		Selected:       []*task.Task{tasks[0]},
	}
	out := PlanView{Plan: plan, Path: "reports/sprint_3.json"}.RenderText(NewStyles(true))

	for _, want := range []string{"Sprint 3 2025-03-10 to 2025-03-24", "  - Ship login", "Login screen", "4.0h of 84.0h (4.8%)", "Saved to: reports/sprint_3.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan view missing %q:\n%s", want, out)
		}
	}
}

func TestStyles_NoColor(t *testing.T) {
	s := NewStyles(true)
	if !s.NoColor() {
		t.Error("NoColor() should be true")
	}
	if got := s.Priority(domain.PriorityCritical).Render("critical"); got != "critical" {
		t.Errorf("plain style rendered %q", got)
	}
	if NewStyles(false).NoColor() {
		t.Error("NoColor() should be false")
	}
}
