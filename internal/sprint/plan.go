// Package sprint builds sprint plans from the open, urgent tasks in the store.
package sprint

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// PlaceholderVelocity is reported as sprint velocity. No sprint history is
// kept, so there is nothing to measure it from.
const PlaceholderVelocity = 40.0

// DateLayout is the layout of plan start and end dates
const DateLayout = "2006-01-02"

// Plan is a sprint plan as written to sprint_<n>.json
type Plan struct {
	SprintNumber   int           `json:"sprint_number" yaml:"sprint_number"`
	StartDate      string        `json:"start_date" yaml:"start_date"`
	EndDate        string        `json:"end_date" yaml:"end_date"`
	Goals          []string      `json:"goals" yaml:"goals"`
	Tasks          []task.Record `json:"tasks" yaml:"tasks"`
	EstimatedHours float64       `json:"estimated_hours" yaml:"estimated_hours"`
	CapacityHours  float64       `json:"capacity_hours" yaml:"capacity_hours"`
	Utilization    float64       `json:"utilization" yaml:"utilization"`

	// Selected holds the packed tasks in plan order
	Selected []*task.Task `json:"-" yaml:"-"`
}

// Capacity is the working time available in one sprint
type Capacity struct {
	DurationDays int
	HoursPerDay  int
}

// Hours returns DurationDays x HoursPerDay, or a CONFIG-001 error when the
// product is not positive
func (c Capacity) Hours() (float64, error) {
	if c.DurationDays <= 0 || c.HoursPerDay <= 0 {
		return 0, agenterrors.NewInvalidCapacityError(c.DurationDays, c.HoursPerDay)
	}
	return float64(c.DurationDays * c.HoursPerDay), nil
}

// IsCandidate reports whether t may be scheduled: open (todo or in_progress)
// and urgent (critical or high)
func IsCandidate(t *task.Task) bool {
	return t.Status.IsOpen() && t.Priority.IsUrgent()
}

// SelectCandidates filters tasks to sprint candidates and orders them by
// priority label, then creation time. The sort is stable, so ties keep
// their input order.
func SelectCandidates(tasks []*task.Task) []*task.Task {
	candidates := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if IsCandidate(t) {
			candidates = append(candidates, t)
		}
	}
	slices.SortStableFunc(candidates, func(a, b *task.Task) int {
		return cmp.Or(
			a.Priority.CompareLabel(b.Priority),
			a.CreatedAt.Compare(b.CreatedAt),
		)
	})
	return candidates
}

// Pack walks candidates once, in order, and takes each task whose hours
// still fit in capacity. A task that does not fit is skipped and never
// revisited.
func Pack(candidates []*task.Task, capacity float64) (selected []*task.Task, total float64) {
	selected = make([]*task.Task, 0, len(candidates))
	for _, t := range candidates {
		if total+t.EstimatedHours <= capacity {
			selected = append(selected, t)
			total += t.EstimatedHours
		}
	}
	return selected, total
}

// Utilization returns selected/capacity as a percentage, unrounded
func Utilization(selected, capacity float64) float64 {
	return selected / capacity * 100
}

// Progress returns the share of started tasks (any status but todo) that
// are completed, as a percentage rounded to one decimal. Zero when nothing
// has started.
func Progress(tasks []*task.Task) float64 {
	started, completed := 0, 0
	for _, t := range tasks {
		if t.Status == domain.StatusTodo {
			continue
		}
		started++
		if t.Status == domain.StatusCompleted {
			completed++
		}
	}
	if started == 0 {
		return 0
	}
	return Round1(float64(completed) / float64(started) * 100)
}

// Round1 rounds x to one decimal place. The exact binary value of x is
// rounded, with exact halves going to the even digit: 6.25 gives 6.2 and
// 0.35 (stored just below .35) gives 0.3.
func Round1(x float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 1, 64), 64)
	return r
}

// sprintDates returns the start and end dates of a sprint starting on now
func sprintDates(now time.Time, durationDays int) (string, string) {
	return now.Format(DateLayout), now.AddDate(0, 0, durationDays).Format(DateLayout)
}
