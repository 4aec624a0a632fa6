package report

import (
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// Snapshot is the project metrics document written to
// metrics/metrics_<YYYYMMDD>.json
type Snapshot struct {
	Timestamp             string  `json:"timestamp"`
	TotalTasks            int     `json:"total_tasks"`
	CompletedTasks        int     `json:"completed_tasks"`
	InProgressTasks       int     `json:"in_progress_tasks"`
	BlockedTasks          int     `json:"blocked_tasks"`
	IOSTasks              int     `json:"ios_tasks"`
	AndroidTasks          int     `json:"android_tasks"`
	AverageCompletionTime float64 `json:"average_completion_time"`
	SprintVelocity        float64 `json:"sprint_velocity"`
}

// BuildSnapshot counts tasks by status and platform. A task on "both" counts
// toward ios and android.
func BuildSnapshot(tasks []*task.Task, now time.Time) *Snapshot {
	s := &Snapshot{
		Timestamp:      now.Format(time.RFC3339Nano),
		TotalTasks:     len(tasks),
		SprintVelocity: sprint.PlaceholderVelocity,
	}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusCompleted:
			s.CompletedTasks++
		case domain.StatusInProgress:
			s.InProgressTasks++
		case domain.StatusBlocked:
			s.BlockedTasks++
		}
		if t.Platform.Includes(domain.PlatformIOS) {
			s.IOSTasks++
		}
		if t.Platform.Includes(domain.PlatformAndroid) {
			s.AndroidTasks++
		}
	}
	s.AverageCompletionTime = AverageCompletionTime(tasks)
	return s
}

// AverageCompletionTime is the mean estimated hours of completed tasks,
// rounded to one decimal, or 0 when none are completed
func AverageCompletionTime(tasks []*task.Task) float64 {
	completed := 0
	hours := 0.0
	for _, t := range tasks {
		if t.Status == domain.StatusCompleted {
			completed++
			hours += t.EstimatedHours
		}
	}
	if completed == 0 {
		return 0
	}
	return sprint.Round1(hours / float64(completed))
}

// Summary is the overview printed by the metrics command
type Summary struct {
	TotalTasks     int            `json:"total_tasks" yaml:"total_tasks"`
	CompletedTasks int            `json:"completed_tasks" yaml:"completed_tasks"`
	CompletionRate float64        `json:"completion_rate" yaml:"completion_rate"`
	ByStatus       map[string]int `json:"by_status" yaml:"by_status"`
	ByPlatform     map[string]int `json:"by_platform" yaml:"by_platform"`
	SprintProgress float64        `json:"sprint_progress" yaml:"sprint_progress"`
	SprintVelocity float64        `json:"sprint_velocity" yaml:"sprint_velocity"`
	AverageHours   float64        `json:"average_completion_time" yaml:"average_completion_time"`
	StaleTasks     int            `json:"stale_tasks" yaml:"stale_tasks"`
}

// BuildSummary computes the overview. Every status appears in ByStatus, and
// ByPlatform holds ios and android counts with "both" counted toward each.
func BuildSummary(tasks []*task.Task, now time.Time) *Summary {
	snap := BuildSnapshot(tasks, now)
	s := &Summary{
		TotalTasks:     snap.TotalTasks,
		CompletedTasks: snap.CompletedTasks,
		ByStatus:       make(map[string]int, len(domain.Statuses)),
		ByPlatform: map[string]int{
			string(domain.PlatformIOS):     snap.IOSTasks,
			string(domain.PlatformAndroid): snap.AndroidTasks,
		},
		SprintProgress: sprint.Progress(tasks),
		SprintVelocity: snap.SprintVelocity,
		AverageHours:   snap.AverageCompletionTime,
		StaleTasks:     len(StaleTasks(tasks, now)),
	}
	for _, st := range domain.Statuses {
		s.ByStatus[string(st)] = 0
	}
	for _, t := range tasks {
		s.ByStatus[string(t.Status)]++
	}
	if s.TotalTasks > 0 {
		s.CompletionRate = float64(s.CompletedTasks) / float64(s.TotalTasks) * 100
	}
	return s
}
