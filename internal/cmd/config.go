package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/config"
	"github.com/felixgeelhaar/pmagent/internal/exitcode"
	"github.com/felixgeelhaar/pmagent/internal/ux"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the agent configuration",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the config file",
		Long: `Write the effective configuration (defaults plus environment overrides)
to the --config path. An existing file is kept unless --force is given.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cc.ConfigPath); err == nil && !force {
				return exitcode.Usage(fmt.Errorf("%s already exists (use --force to overwrite)", cc.ConfigPath))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := config.Save(cfg, cc.ConfigPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ux.NewStyles(cc.NoColor).Success.Render("Wrote"), cc.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if format == "text" {
				format = "yaml"
			}
			f, err := a.formatter(format)
			if err != nil {
				return err
			}
			return f.Format(configView(a.cfg))
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml, json")
	return cmd
}

// configView is the printable form of cfg with the DSN redacted
func configView(cfg *config.Config) map[string]any {
	dsn := ""
	if cfg.Export.PostgresDSN != "" {
		dsn = "<redacted>"
	}
	return map[string]any{
		"sprint_duration_days":  cfg.SprintDurationDays,
		"work_hours_per_day":    cfg.WorkHoursPerDay,
		"platforms":             cfg.Platforms,
		"team_members":          cfg.TeamMembers,
		"code_review_threshold": cfg.CodeReviewThreshold,
		"auto_assign_tasks":     cfg.AutoAssignTasks,
		"data_dir":              cfg.DataDir,
		"reports_dir":           cfg.ReportsDir,
		"projects": map[string]any{
			"ios_path":     cfg.Projects.IOSPath,
			"android_path": cfg.Projects.AndroidPath,
		},
		"gateway": map[string]any{
			"provider":       cfg.Gateway.Provider,
			"model":          cfg.Gateway.Model,
			"timeout":        cfg.Gateway.Timeout.String(),
			"providers_file": cfg.Gateway.ProvidersFile,
		},
		"log": map[string]any{
			"level":  cfg.Log.Level,
			"format": cfg.Log.Format,
		},
		"export": map[string]any{
			"postgres_dsn": dsn,
		},
	}
}
