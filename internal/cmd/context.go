package cmd

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/advisor"
	"github.com/felixgeelhaar/pmagent/internal/agent"
	"github.com/felixgeelhaar/pmagent/internal/config"
	"github.com/felixgeelhaar/pmagent/internal/exitcode"
	"github.com/felixgeelhaar/pmagent/internal/gateway"
	"github.com/felixgeelhaar/pmagent/internal/log"
	"github.com/felixgeelhaar/pmagent/internal/metrics"
	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/sprint"
	"github.com/felixgeelhaar/pmagent/internal/store"
	"github.com/felixgeelhaar/pmagent/internal/ux"
)

// CommandContext holds the persistent flags. Commands read it through
// NewCommandContext instead of package variables.
type CommandContext struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	NoColor    bool
}

// NewCommandContext extracts the persistent flags from cmd
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		NoColor:    noColor,
	}, nil
}

// app is the per-invocation wiring shared by the commands
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	noColor  bool
	out      io.Writer

	generator gateway.Generator
}

// newApp loads the configuration and builds the logger and metrics
func newApp(cmd *cobra.Command) (*app, error) {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to create command context: %w", err)
	}

	cfg, err := config.Load(cc.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cc.LogLevel != "" {
		cfg.Log.Level = cc.LogLevel
	}
	if cc.LogFormat != "" {
		cfg.Log.Format = cc.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := log.New(log.Config{
		Level:       log.ParseLevel(cfg.Log.Level),
		Format:      log.ParseFormat(cfg.Log.Format),
		Output:      log.NewOutput(cmd.ErrOrStderr()),
		ServiceName: "pmagent",
	}).With("command", cmd.Name())

	registry, m := metrics.NewRegistry()
	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  m,
		noColor:  cc.NoColor,
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *app) openStore() (*store.Store, error) {
	return store.Open(a.cfg.TasksPath(), store.WithLogger(a.logger), store.WithMetrics(a.metrics))
}

// gateway builds the text generation backend on first use
func (a *app) gateway() (gateway.Generator, error) {
	if a.generator != nil {
		return a.generator, nil
	}
	g, err := gateway.Build(a.cfg.GatewaySettings(), a.logger, a.metrics)
	if err != nil {
		return nil, err
	}
	a.generator = g
	return g, nil
}

func (a *app) writer() *report.Writer {
	return report.NewWriter(a.cfg.ReportsDir, a.logger, a.metrics)
}

func (a *app) agent(tasks agent.TaskSource) (*agent.Agent, error) {
	g, err := a.gateway()
	if err != nil {
		return nil, err
	}
	w := a.writer()
	planner := sprint.NewPlanner(a.cfg.Capacity(), g, w.Root(),
		sprint.WithLogger(a.logger),
		sprint.WithMetrics(a.metrics),
	)
	return agent.New(tasks, planner, w,
		agent.WithLogger(a.logger),
		agent.WithMetrics(a.metrics, a.registry),
	), nil
}

func (a *app) advisor(tasks advisor.TaskCreator) (*advisor.Advisor, error) {
	g, err := a.gateway()
	if err != nil {
		return nil, err
	}
	return advisor.New(g, tasks, a.writer(),
		advisor.WithLogger(a.logger),
		advisor.WithProjects(advisor.Projects{
			IOSPath:     a.cfg.Projects.IOSPath,
			AndroidPath: a.cfg.Projects.AndroidPath,
		}),
	), nil
}

func (a *app) formatter(format string) (ux.Formatter, error) {
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: a.out, NoColor: a.noColor})
	if err != nil {
		return nil, exitcode.Usage(err)
	}
	return f, nil
}

func (a *app) styles() *ux.Styles {
	return ux.NewStyles(a.noColor)
}
