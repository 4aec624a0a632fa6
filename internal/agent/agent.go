// Package agent drives the scheduled work: the daily run that writes the
// standup and metrics reports, and sprint planning.
package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	agenterrors "github.com/felixgeelhaar/pmagent/internal/errors"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// TaskSource lists the current tasks in store order; *store.Store satisfies it
type TaskSource interface {
	List() []*task.Task
}

// Agent composes the store, planner and report writer
type Agent struct {
	tasks   TaskSource
	planner *sprint.Planner
	writer  *report.Writer

	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	clock    func() time.Time
	newID    func() string
	logger   *log.Logger
}

// Option configures an Agent
type Option func(*Agent)

// WithClock sets the time source
func WithClock(clock func() time.Time) Option {
	return func(a *Agent) { a.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// WithMetrics sets the metrics sink and the registry exported by the daily
// run. Without a gatherer no textfile is written.
func WithMetrics(m *metrics.Metrics, gatherer prometheus.Gatherer) Option {
	return func(a *Agent) {
		a.metrics = m
		a.gatherer = gatherer
	}
}

// WithRunIDs sets the run id source
func WithRunIDs(newID func() string) Option {
	return func(a *Agent) { a.newID = newID }
}

// New creates an Agent
func New(tasks TaskSource, planner *sprint.Planner, writer *report.Writer, opts ...Option) *Agent {
	a := &Agent{
		tasks:   tasks,
		planner: planner,
		writer:  writer,
		clock:   time.Now,
		newID:   uuid.NewString,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DailyResult describes one daily run
type DailyResult struct {
	RunID        string
	StandupPath  string
	MetricsPath  string
	TextfilePath string
	Standup      *report.Standup
	Snapshot     *report.Snapshot
	Stale        []*task.Task
}

// RunDaily writes the standup, warns about stale tasks, writes the metrics
// snapshot and refreshes the task gauges. Write failures stop the run.
func (a *Agent) RunDaily(ctx context.Context) (*DailyResult, error) {
	res := &DailyResult{RunID: a.newID()}
	logger := a.logger.With("run_id", res.RunID)
	logger.Info("running daily automation")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := a.clock()
	tasks := a.tasks.List()

	res.Standup = report.BuildStandup(tasks, now)
	path, err := a.writer.WriteStandup(res.Standup)
	if err != nil {
		return nil, err
	}
	res.StandupPath = path
	logger.Info("standup generated", "path", path,
		"completed_yesterday", len(res.Standup.CompletedYesterday),
		"in_progress", len(res.Standup.InProgress),
		"blocked", len(res.Standup.Blocked))

	res.Stale = report.StaleTasks(tasks, now)
	for _, t := range res.Stale {
		logger.Warn("stale task detected", "task_id", t.ID, "title", t.Title, "updated_at", t.UpdatedAt.Format(time.RFC3339))
	}

	res.Snapshot = report.BuildSnapshot(tasks, now)
	if res.MetricsPath, err = a.writer.WriteMetrics(res.Snapshot, now); err != nil {
		return nil, err
	}

	summary := report.BuildSummary(tasks, now)
	a.metrics.SetTaskCounts(summary.ByStatus, summary.ByPlatform, len(res.Stale))
	if a.gatherer != nil {
		textfile := a.writer.MetricsTextfilePath()
		if err := metrics.WriteTextfile(a.gatherer, textfile); err != nil {
			return nil, agenterrors.NewFileWriteError(textfile, err)
		}
		res.TextfilePath = textfile
	}

	logger.Info("daily automation completed", "tasks", len(tasks), "stale", len(res.Stale))
	return res, nil
}

// PlanSprint plans the next sprint from the current tasks and saves it.
// It returns the plan and the path of the saved report.
func (a *Agent) PlanSprint(ctx context.Context) (*sprint.Plan, string, error) {
	logger := a.logger.With("run_id", a.newID())

	plan, err := a.planner.Plan(ctx, a.tasks.List())
	if err != nil {
		return nil, "", err
	}
	path, err := a.writer.WriteSprint(plan)
	if err != nil {
		return nil, "", err
	}
	logger.Info("sprint plan saved", "sprint", plan.SprintNumber, "path", path, "tasks", len(plan.Tasks))
	return plan, path, nil
}
