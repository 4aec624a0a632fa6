// Package report derives read-only views of the task set: the daily standup,
// stale task detection and the metrics snapshot. Nothing here mutates tasks.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// standupListLimit caps the entries rendered per standup section
const standupListLimit = 5

// Standup is the digest behind the daily standup document
type Standup struct {
	Date               time.Time
	CompletedYesterday []*task.Task
	InProgress         []*task.Task
	Blocked            []*task.Task
	SprintProgress     float64

	// Started counts tasks that have left todo
	Started int
}

// BuildStandup collects the standup sections from tasks in store order.
// Completed-yesterday means completed with updated_at on the calendar day
// before now, in now's location.
func BuildStandup(tasks []*task.Task, now time.Time) *Standup {
	s := &Standup{Date: now, SprintProgress: sprint.Progress(tasks)}
	yesterday := now.AddDate(0, 0, -1)

	for _, t := range tasks {
		if t.Status != domain.StatusTodo {
			s.Started++
		}
		switch t.Status {
		case domain.StatusCompleted:
			if sameDay(t.UpdatedAt.In(now.Location()), yesterday) {
				s.CompletedYesterday = append(s.CompletedYesterday, t)
			}
		case domain.StatusInProgress:
			s.InProgress = append(s.InProgress, t)
		case domain.StatusBlocked:
			s.Blocked = append(s.Blocked, t)
		}
	}
	return s
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Render returns the standup as markdown
func (s *Standup) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Daily Standup - %s\n\n", s.Date.Format("2006-01-02"))

	b.WriteString("## Yesterday's Accomplishments\n")
	b.WriteString(formatTaskList(s.CompletedYesterday))
	b.WriteString("\n\n## Today's Focus\n")
	b.WriteString(formatTaskList(s.InProgress))
	b.WriteString("\n\n## Blockers\n")
	b.WriteString(formatTaskList(s.Blocked))

	b.WriteString("\n\n## Metrics\n")
	fmt.Fprintf(&b, "- Tasks Completed: %d\n", len(s.CompletedYesterday))
	fmt.Fprintf(&b, "- Tasks In Progress: %d\n", len(s.InProgress))
	fmt.Fprintf(&b, "- Blocked Tasks: %d\n", len(s.Blocked))
	fmt.Fprintf(&b, "- Sprint Progress: %s%%\n", s.formatProgress())
	return b.String()
}

// formatTaskList renders up to five "- [PLATFORM] Title (priority)" lines,
// or "- None"
func formatTaskList(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "- None"
	}
	lines := make([]string, 0, standupListLimit)
	for i, t := range tasks {
		if i == standupListLimit {
			break
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s (%s)", t.Platform.Label(), t.Title, t.Priority))
	}
	return strings.Join(lines, "\n")
}

// formatProgress prints the progress with one decimal, so 50 prints as
// 50.0. With nothing started there is no ratio and it prints as 0.
func (s *Standup) formatProgress() string {
	if s.Started == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", s.SprintProgress)
}
