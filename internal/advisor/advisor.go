// Package advisor asks the text generation backend for project insight:
// codebase analysis, a feature parity check and new task suggestions.
// Backend failures never fail an operation; they leave an error in the
// report or an empty suggestion list.
package advisor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/task"
)

// Token limits per request
const (
	analyzeMaxTokens = 2000
	parityMaxTokens  = 1500
	suggestMaxTokens = 1000
)

// Gateway purposes
const (
	PurposeAnalyze = "analyze"
	PurposeParity  = "parity"
	PurposeSuggest = "suggest"
)

// TaskCreator creates tasks; *store.Store satisfies it
type TaskCreator interface {
	Create(p task.Params) (*task.Task, error)
}

// Projects locates the two app codebases named in analysis prompts
type Projects struct {
	IOSPath     string
	AndroidPath string
}

// DefaultProjects returns the project paths used when none are configured
func DefaultProjects() Projects {
	return Projects{IOSPath: "MindQuestApp", AndroidPath: "MindLabsQuestAndroid"}
}

// Advisor runs the generation-backed operations
type Advisor struct {
	generator gateway.Generator
	tasks     TaskCreator
	writer    *report.Writer
	projects  Projects

	clock  func() time.Time
	newID  func() string
	logger *log.Logger
}

// Option configures an Advisor
type Option func(*Advisor)

// WithClock sets the time source for report timestamps
func WithClock(clock func() time.Time) Option {
	return func(a *Advisor) { a.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(a *Advisor) { a.logger = logger }
}

// WithProjects sets the codebase paths
func WithProjects(p Projects) Option {
	return func(a *Advisor) { a.projects = p }
}

// WithRunIDs sets the run id source
func WithRunIDs(newID func() string) Option {
	return func(a *Advisor) { a.newID = newID }
}

// New creates an Advisor. tasks receives suggested tasks and writer saves
// analysis and parity reports.
func New(generator gateway.Generator, tasks TaskCreator, writer *report.Writer, opts ...Option) *Advisor {
	a := &Advisor{
		generator: generator,
		tasks:     tasks,
		writer:    writer,
		projects:  DefaultProjects(),
		clock:     time.Now,
		newID:     uuid.NewString,
		logger:    log.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Advisor) generate(ctx context.Context, purpose, prompt string, maxTokens int) (string, error) {
	return a.generator.Generate(gateway.WithPurpose(ctx, purpose), prompt, maxTokens)
}
