package sprint

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

func fixedClock() time.Time { return base }

func TestPlanner_EndToEnd(t *testing.T) {
	tasks := []*task.Task{
		mk("A", domain.PriorityCritical, domain.StatusTodo, 10, 0),
		mk("B", domain.PriorityHigh, domain.StatusTodo, 20, time.Hour),
		mk("C", domain.PriorityLow, domain.StatusTodo, 5, 2*time.Hour),
	}

	run := func() *Plan {
		fake := gateway.NewFake(`Goals: ["Ship A"]`)
		p := NewPlanner(Capacity{DurationDays: 5, HoursPerDay: 5}, fake, t.TempDir(), WithClock(fixedClock))
		plan, err := p.Plan(context.Background(), tasks)
		require.NoError(t, err)
		return plan
	}

	plan := run()
	assert.Equal(t, []string{"A"}, ids(plan.Selected))
	require.Len(t, plan.Tasks, 1)
	assert.Equal(t, "A", plan.Tasks[0].ID)
	assert.Equal(t, 10.0, plan.EstimatedHours)
	assert.Equal(t, 25.0, plan.CapacityHours)
	assert.Equal(t, 40.0, plan.Utilization)
	assert.Equal(t, 1, plan.SprintNumber)
	assert.Equal(t, "2025-03-10", plan.StartDate)
	assert.Equal(t, "2025-03-15", plan.EndDate)
	assert.Equal(t, []string{"Ship A"}, plan.Goals)

	again := run()
	assert.Equal(t, ids(plan.Selected), ids(again.Selected))
	assert.Equal(t, plan.Utilization, again.Utilization)
}

func TestPlanner_InvalidCapacity(t *testing.T) {
	fake := gateway.NewFake()
	p := NewPlanner(Capacity{DurationDays: 0, HoursPerDay: 6}, fake, t.TempDir())

	_, err := p.Plan(context.Background(), []*task.Task{mk("A", domain.PriorityHigh, domain.StatusTodo, 1, 0)})
	require.Error(t, err)
	assert.True(t, agenterrors.HasCode(err, agenterrors.ErrCodeConfigInvalid))
	assert.Empty(t, fake.Calls(), "no goals are requested for a rejected plan")
}

func TestPlanner_NumbersAfterExistingSprints(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sprint_4.json"), []byte("{}"), 0o644))

	p := NewPlanner(Capacity{DurationDays: 14, HoursPerDay: 6}, gateway.NewFake(), dir)
	plan, err := p.Plan(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, plan.SprintNumber)
}

func TestGoals_EmptySelectionSkipsGateway(t *testing.T) {
	fake := gateway.NewFake(`["unused"]`)
	p := NewPlanner(Capacity{14, 6}, fake, t.TempDir())

	assert.Equal(t, []string{"Complete backlog grooming", "Improve test coverage"}, p.Goals(context.Background(), nil))
	assert.Empty(t, fake.Calls())
}

func TestGoals_Fallbacks(t *testing.T) {
	selected := []*task.Task{mk("A", domain.PriorityHigh, domain.StatusTodo, 1, 0)}
	want := []string{"Complete high-priority features", "Maintain platform parity"}

	tests := []struct {
		name string
		gen  gateway.Generator
	}{
		{"gateway error", &gateway.Fake{Err: errors.New("connection refused")}},
		{"offline", gateway.Offline{Provider: "anthropic"}},
		{"no array", gateway.NewFake("I cannot help with that")},
		{"bad json", gateway.NewFake("[Ship it]")},
		{"empty array", gateway.NewFake("[]")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlanner(Capacity{14, 6}, tt.gen, t.TempDir())
			assert.Equal(t, want, p.Goals(context.Background(), selected))
		})
	}
}

func TestGoals_TimeoutFallsBack(t *testing.T) {
	fake := &gateway.Fake{Block: true}
	p := NewPlanner(Capacity{14, 6}, fake, t.TempDir())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	goals := p.Goals(ctx, []*task.Task{mk("A", domain.PriorityHigh, domain.StatusTodo, 1, 0)})
	assert.Equal(t, FallbackGoals, goals)
}

func TestGoals_PromptListsFirstTenTasks(t *testing.T) {
	var selected []*task.Task
	for i := 1; i <= 12; i++ {
		tk := mk(domain.TaskIDFromSequence(i).String(), domain.PriorityHigh, domain.StatusTodo, 1, 0)
		tk.Title = "Title" + domain.TaskIDFromSequence(i).String()
		tk.Description = "Desc"
		selected = append(selected, tk)
	}

	fake := gateway.NewFake(`["g"]`)
	p := NewPlanner(Capacity{14, 6}, fake, t.TempDir())
	p.Goals(context.Background(), selected)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 500, calls[0].MaxTokens)
	assert.Equal(t, "sprint_goals", calls[0].Purpose)
	assert.Contains(t, calls[0].Prompt, "- TitleTASK-0001: Desc\n")
	assert.Contains(t, calls[0].Prompt, "- TitleTASK-0010: Desc\n")
	assert.NotContains(t, calls[0].Prompt, "TASK-0011")
	assert.True(t, strings.Contains(calls[0].Prompt, "JSON array of strings"))
}

func TestGoals_ReturnsCopiesOfDefaults(t *testing.T) {
	p := NewPlanner(Capacity{14, 6}, gateway.NewFake(), t.TempDir())
	goals := p.Goals(context.Background(), nil)
	goals[0] = "mutated"
	assert.Equal(t, "Complete backlog grooming", EmptySprintGoals[0])
}
