package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/config"
	"github.com/felixgeelhaar/pmagent/internal/exitcode"
)

// NewRootCommand builds the pmagent command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pmagent",
		Short: "Task tracking and sprint planning for the MindQuest apps",
		Long: `pmagent keeps a task store for the iOS and Android MindQuest apps and derives
standup reports, sprint plans and project metrics from it. Analysis, parity
checks and task suggestions use a text generation provider when one is
configured; without one they fall back to fixed defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", config.DefaultPath, "config file (JSON or YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default from config)")
	flags.String("log-format", "", "log format: text or json (default from config)")
	flags.Bool("no-color", false, "disable colored output")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return exitcode.Usage(err)
	})

	rootCmd.AddCommand(
		newStandupCmd(),
		newSprintPlanCmd(),
		newAnalyzeCmd(),
		newParityCmd(),
		newCreateTaskCmd(),
		newListTasksCmd(),
		newUpdateStatusCmd(),
		newSuggestCmd(),
		newDailyCmd(),
		newMetricsCmd(),
		newStaleCmd(),
		newExportCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// ExecuteContext runs the CLI with ctx as the root context
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// usageArgs wraps a positional argument validator so its failures map to
// the usage exit code
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return exitcode.Usage(validate(cmd, args))
	}
}
