package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/report"
	"github.com/felixgeelhaar/pmagent/internal/ux"
)

func newStandupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standup",
		Short: "Write and print today's standup",
		Long: `Build the daily standup from the task store, save it to
reports/standups/standup_<YYYYMMDD>.md and print it.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			standup := report.BuildStandup(s.List(), time.Now())
			if _, err := a.writer().WriteStandup(standup); err != nil {
				return err
			}
			fmt.Fprint(a.out, standup.Render())
			return nil
		},
	}
}

func newSprintPlanCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "sprint-plan",
		Short: "Plan the next sprint",
		Long: `Select open critical and high priority tasks, pack them into the sprint
capacity (sprint_duration_days x work_hours_per_day) and save the plan as
reports/sprint_<n>.json. Goals come from the text generation provider, or
fixed defaults when it is unavailable.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			f, err := a.formatter(format)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ag, err := a.agent(s)
			if err != nil {
				return err
			}
			plan, path, err := ag.PlanSprint(cmd.Context())
			if err != nil {
				return err
			}
			if format == "text" {
				return f.Format(ux.PlanView{Plan: plan, Path: path})
			}
			return f.Format(plan)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func newDailyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daily",
		Short: "Run the daily automation",
		Long: `Write the standup, warn about stale tasks, write the metrics snapshot and
export the Prometheus textfile reports/metrics/pmagent.prom. Meant for cron.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			ag, err := a.agent(s)
			if err != nil {
				return err
			}
			res, err := ag.RunDaily(cmd.Context())
			if err != nil {
				return err
			}

			st := a.styles()
			fmt.Fprintf(a.out, "%s %s\n", st.Success.Render("Daily automation completed"), st.Muted.Render("run "+res.RunID))
			fmt.Fprintf(a.out, "  standup:  %s\n", res.StandupPath)
			fmt.Fprintf(a.out, "  metrics:  %s\n", res.MetricsPath)
			fmt.Fprintf(a.out, "  textfile: %s\n", res.TextfilePath)
			if len(res.Stale) > 0 {
				fmt.Fprintf(a.out, "  %s\n", st.Warning.Render(fmt.Sprintf("%d stale task(s)", len(res.Stale))))
			}
			return nil
		},
	}
}

func newMetricsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show project metrics",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			f, err := a.formatter(format)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			summary := report.BuildSummary(s.List(), time.Now())
			if format == "text" {
				return f.Format(ux.SummaryView{Summary: summary})
			}
			return f.Format(summary)
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}

func newStaleCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stale",
		Short: "List in-progress tasks not updated for 7 days",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			f, err := a.formatter(format)
			if err != nil {
				return err
			}
			s, err := a.openStore()
			if err != nil {
				return err
			}
			stale := ux.TaskList(report.StaleTasks(s.List(), time.Now()))
			for _, t := range stale {
				a.logger.Warn("stale task detected", "task_id", t.ID, "title", t.Title)
			}
			if format == "text" {
				return f.Format(stale)
			}
			return f.Format(stale.Records())
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}
