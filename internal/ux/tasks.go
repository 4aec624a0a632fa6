package ux

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// TaskList renders tasks as an aligned table in text output
type TaskList []*task.Task

// Column widths for the task table
const (
	idWidth       = 11
	priorityWidth = 10
	statusWidth   = 13
	platformWidth = 10
	hoursWidth    = 7
)

// RenderText implements TextRenderer
func (l TaskList) RenderText(s *Styles) string {
	if len(l) == 0 {
		return s.Muted.Render("No tasks found") + "\n"
	}

	var b strings.Builder
	b.WriteString(s.Header.Render(
		pad("ID", idWidth) + pad("PRIORITY", priorityWidth) + pad("STATUS", statusWidth) +
			pad("PLATFORM", platformWidth) + pad("HOURS", hoursWidth) + "TITLE"))
	b.WriteString("\n")
	for _, t := range l {
		b.WriteString(s.ID.Render(pad(string(t.ID), idWidth)))
		b.WriteString(s.Priority(t.Priority).Render(pad(string(t.Priority), priorityWidth)))
		b.WriteString(s.Status(t.Status).Render(pad(string(t.Status), statusWidth)))
		b.WriteString(pad(string(t.Platform), platformWidth))
		b.WriteString(pad(fmt.Sprintf("%.1f", t.EstimatedHours), hoursWidth))
		b.WriteString(t.Title)
		b.WriteString("\n")
	}
	b.WriteString(s.Muted.Render(fmt.Sprintf("%d task(s)", len(l))))
	b.WriteString("\n")
	return b.String()
}

// Records returns the persisted form of the tasks for json and yaml output
func (l TaskList) Records() []task.Record {
	records := make([]task.Record, 0, len(l))
	for _, t := range l {
		records = append(records, t.ToRecord())
	}
	return records
}

// pad left-aligns text in a column of width cells
func pad(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

// SummaryView renders the metrics overview in text output
type SummaryView struct {
	*report.Summary
}

// RenderText implements TextRenderer
func (v SummaryView) RenderText(s *Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Project Metrics"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %d\n", s.Header.Render("Total tasks:"), v.TotalTasks)
	fmt.Fprintf(&b, "%s %d (%.1f%%)\n", s.Header.Render("Completed:"), v.CompletedTasks, v.CompletionRate)
	fmt.Fprintf(&b, "%s %.1f%%\n", s.Header.Render("Sprint progress:"), v.SprintProgress)
	fmt.Fprintf(&b, "%s %.1f\n", s.Header.Render("Sprint velocity:"), v.SprintVelocity)
	fmt.Fprintf(&b, "%s %.1fh\n", s.Header.Render("Avg completed estimate:"), v.AverageHours)
	if v.StaleTasks > 0 {
		fmt.Fprintf(&b, "%s %s\n", s.Header.Render("Stale tasks:"), s.Warning.Render(fmt.Sprint(v.StaleTasks)))
	} else {
		fmt.Fprintf(&b, "%s 0\n", s.Header.Render("Stale tasks:"))
	}

	b.WriteString("\n")
	b.WriteString(s.Header.Render("By status"))
	b.WriteString("\n")
	for _, st := range statusOrder {
		fmt.Fprintf(&b, "  %s %d\n", pad(st, statusWidth), v.ByStatus[st])
	}
	b.WriteString(s.Header.Render("By platform"))
	b.WriteString("\n")
	for _, p := range []string{"ios", "android"} {
		fmt.Fprintf(&b, "  %s %d\n", pad(p, statusWidth), v.ByPlatform[p])
	}
	return b.String()
}

var statusOrder = []string{"todo", "in_progress", "review", "completed", "blocked"}

// PlanView renders a sprint plan in text output
type PlanView struct {
	*sprint.Plan
	Path string
}

// RenderText implements TextRenderer
func (v PlanView) RenderText(s *Styles) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(fmt.Sprintf("Sprint %d", v.SprintNumber)))
	fmt.Fprintf(&b, " %s\n\n", s.Muted.Render(v.StartDate+" to "+v.EndDate))

	b.WriteString(s.Header.Render("Goals"))
	b.WriteString("\n")
	for _, g := range v.Goals {
		fmt.Fprintf(&b, "  - %s\n", g)
	}
	b.WriteString("\n")
	b.WriteString(TaskList(v.Selected).RenderText(s))
	fmt.Fprintf(&b, "\n%s %.1fh of %.1fh (%.1f%%)\n", s.Header.Render("Estimated:"),
		v.EstimatedHours, v.CapacityHours, v.Utilization)
	if v.Path != "" {
		fmt.Fprintf(&b, "%s %s\n", s.Header.Render("Saved to:"), v.Path)
	}
	return b.String()
}
