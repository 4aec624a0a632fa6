package sprint

import (
	"context"
	"fmt"
	"strings"
	"time"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

const (
	goalsMaxTokens   = 500
	goalsPromptTasks = 10
)

var (
	// EmptySprintGoals are used when nothing was selected
	EmptySprintGoals = []string{"Complete backlog grooming", "Improve test coverage"}

	// FallbackGoals are used when goal generation fails
	FallbackGoals = []string{"Complete high-priority features", "Maintain platform parity"}
)

// Planner builds sprint plans
type Planner struct {
	capacity  Capacity
	generator gateway.Generator
	sprintDir string

	clock   func() time.Time
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Planner
type Option func(*Planner)

// WithClock sets the time source for plan dates
func WithClock(clock func() time.Time) Option {
	return func(p *Planner) { p.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// NewPlanner creates a Planner. sprintDir is scanned for existing
// sprint_<n>.json files to number the next sprint.
func NewPlanner(capacity Capacity, generator gateway.Generator, sprintDir string, opts ...Option) *Planner {
	p := &Planner{
		capacity:  capacity,
		generator: generator,
		sprintDir: sprintDir,
		clock:     time.Now,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan selects and packs tasks into the next sprint and asks the generator
// for goals. Only a non-positive capacity or an unreadable sprint directory
// fails; goal generation problems fall back to fixed goals.
func (p *Planner) Plan(ctx context.Context, tasks []*task.Task) (*Plan, error) {
	capacity, err := p.capacity.Hours()
	if err != nil {
		return nil, err
	}

	number, err := NextSprintNumber(p.sprintDir)
	if err != nil {
		return nil, agenterrors.Wrap(agenterrors.ErrCodeDirectoryFailed, "failed to number sprint", err)
	}

	candidates := SelectCandidates(tasks)
	selected, total := Pack(candidates, capacity)
	start, end := sprintDates(p.clock(), p.capacity.DurationDays)

	plan := &Plan{
		SprintNumber:   number,
		StartDate:      start,
		EndDate:        end,
		Tasks:          make([]task.Record, 0, len(selected)),
		EstimatedHours: total,
		CapacityHours:  capacity,
		Utilization:    Utilization(total, capacity),
		Selected:       selected,
	}
	for _, t := range selected {
		plan.Tasks = append(plan.Tasks, t.ToRecord())
	}
	plan.Goals = p.Goals(ctx, selected)

	p.metrics.RecordSprintPlan(len(selected), plan.Utilization)
	p.logger.Info("sprint planned",
		"sprint", number,
		"candidates", len(candidates),
		"selected", len(selected),
		"estimated_hours", total,
		"capacity_hours", capacity,
	)
	return plan, nil
}

// Goals asks the generator for 3-5 goals covering selected. It never fails:
// an empty selection and every generation problem map to fixed goals.
func (p *Planner) Goals(ctx context.Context, selected []*task.Task) []string {
	if len(selected) == 0 {
		return clone(EmptySprintGoals)
	}

	ctx = gateway.WithPurpose(ctx, "sprint_goals")
	text, err := p.generator.Generate(ctx, goalsPrompt(selected), goalsMaxTokens)
	if err != nil {
		p.logger.WithError(err).Warn("sprint goal generation failed, using fallback goals")
		return clone(FallbackGoals)
	}

	var goals []string
	if err := gateway.DecodeArray(text, &goals); err != nil || len(goals) == 0 {
		p.logger.Warn("sprint goal response unusable, using fallback goals", "error", err)
		return clone(FallbackGoals)
	}
	return goals
}

// goalsPrompt lists the first tasks as "- Title: Description"
func goalsPrompt(selected []*task.Task) string {
	var b strings.Builder
	b.WriteString("Based on these sprint tasks, generate 3-5 concise sprint goals:\n\nTasks:\n")
	for i, t := range selected {
		if i == goalsPromptTasks {
			break
		}
		fmt.Fprintf(&b, "- %s: %s\n", t.Title, t.Description)
	}
	b.WriteString("\nGenerate strategic goals that encompass these tasks. Be specific and measurable.\n")
	b.WriteString("Return as a JSON array of strings.\n")
	return b.String()
}

func clone(s []string) []string {
	return append([]string(nil), s...)
}
