package report

import (
	"time"

	"github.com/felixgeelhaar/pmagent/internal/task"
)

// StaleThreshold is how long an in-progress task may go without an update
const StaleThreshold = 7 * 24 * time.Hour

// StaleTasks returns the in-progress tasks last updated before now minus
// StaleThreshold, in store order
func StaleTasks(tasks []*task.Task, now time.Time) []*task.Task {
	var stale []*task.Task
	for _, t := range tasks {
		if t.IsStale(now, StaleThreshold) {
			stale = append(stale, t)
		}
	}
	return stale
}
