package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func mk(title string, platform domain.Platform, p domain.Priority, s domain.Status, updated time.Time) *task.Task {
	return &task.Task{
		ID:             domain.TaskID("TASK-" + title),
		Title:          title,
		Priority:       p,
		Status:         s,
		Platform:       platform,
		EstimatedHours: 4,
		CreatedAt:      updated.Add(-time.Hour),
		UpdatedAt:      updated,
	}
}

func TestBuildStandup_Sections(t *testing.T) {
	yesterday := now.AddDate(0, 0, -1)
	tasks := []*task.Task{
		mk("done-yesterday", domain.PlatformIOS, domain.PriorityHigh, domain.StatusCompleted, yesterday.Add(3*time.Hour)),
		mk("done-today", domain.PlatformIOS, domain.PriorityHigh, domain.StatusCompleted, now),
		mk("done-last-week", domain.PlatformIOS, domain.PriorityHigh, domain.StatusCompleted, now.AddDate(0, 0, -7)),
		mk("working", domain.PlatformAndroid, domain.PriorityMedium, domain.StatusInProgress, now),
		mk("stuck", domain.PlatformBoth, domain.PriorityCritical, domain.StatusBlocked, now),
		mk("waiting", domain.PlatformBoth, domain.PriorityLow, domain.StatusTodo, now),
	}

	s := BuildStandup(tasks, now)
	assert.Len(t, s.CompletedYesterday, 1)
	assert.Equal(t, "done-yesterday", s.CompletedYesterday[0].Title)
	assert.Len(t, s.InProgress, 1)
	assert.Len(t, s.Blocked, 1)
	// 3 completed of 5 started
	assert.Equal(t, 60.0, s.SprintProgress)
}

func TestBuildStandup_YesterdayUsesNowLocation(t *testing.T) {
	zone := time.FixedZone("UTC+10", 10*60*60)
	localNow := time.Date(2025, 3, 10, 8, 0, 0, 0, zone)
	// 2025-03-08 23:30 UTC is 2025-03-09 09:30 in UTC+10, which is yesterday there
	updated := time.Date(2025, 3, 8, 23, 30, 0, 0, time.UTC)

	s := BuildStandup([]*task.Task{mk("a", domain.PlatformIOS, domain.PriorityLow, domain.StatusCompleted, updated)}, localNow)
	assert.Len(t, s.CompletedYesterday, 1)
}

func TestStandup_Render(t *testing.T) {
	tasks := []*task.Task{
		mk("Login", domain.PlatformIOS, domain.PriorityHigh, domain.StatusInProgress, now),
		mk("Sync", domain.PlatformBoth, domain.PriorityCritical, domain.StatusBlocked, now),
	}
	doc := BuildStandup(tasks, now).Render()

	want := `# Daily Standup - 2025-03-10

## Yesterday's Accomplishments
- None

## Today's Focus
- [IOS] Login (high)

## Blockers
- [BOTH] Sync (critical)

## Metrics
- Tasks Completed: 0
- Tasks In Progress: 1
- Blocked Tasks: 1
- Sprint Progress: 0.0%
`
	assert.Equal(t, want, doc)
}

func TestStandup_RenderNothingStarted(t *testing.T) {
	tasks := []*task.Task{
		mk("Login", domain.PlatformIOS, domain.PriorityHigh, domain.StatusTodo, now),
	}
	s := BuildStandup(tasks, now)
	assert.Equal(t, 0, s.Started)
	assert.Contains(t, s.Render(), "- Sprint Progress: 0%\n")
	assert.Contains(t, BuildStandup(nil, now).Render(), "- Sprint Progress: 0%\n")
}

func TestStandup_RenderLimitsListsButNotCounts(t *testing.T) {
	var tasks []*task.Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, mk(string(rune('A'+i)), domain.PlatformAndroid, domain.PriorityMedium, domain.StatusInProgress, now))
	}
	doc := BuildStandup(tasks, now).Render()

	assert.Equal(t, 5, strings.Count(doc, "- [ANDROID]"))
	assert.Contains(t, doc, "- [ANDROID] E (medium)")
	assert.NotContains(t, doc, "- [ANDROID] F (medium)")
	assert.Contains(t, doc, "- Tasks In Progress: 8")
}

func TestStaleTasks(t *testing.T) {
	tasks := []*task.Task{
		mk("eight-days", domain.PlatformIOS, domain.PriorityHigh, domain.StatusInProgress, now.Add(-8*24*time.Hour)),
		mk("six-days", domain.PlatformIOS, domain.PriorityHigh, domain.StatusInProgress, now.Add(-6*24*time.Hour)),
		mk("old-blocked", domain.PlatformIOS, domain.PriorityHigh, domain.StatusBlocked, now.Add(-30*24*time.Hour)),
	}
	stale := StaleTasks(tasks, now)
	if assert.Len(t, stale, 1) {
		assert.Equal(t, "eight-days", stale[0].Title)
	}
}
