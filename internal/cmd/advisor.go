package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/domain"
	"github.com/felixgeelhaar/pmagent/internal/exitcode"
	"github.com/felixgeelhaar/pmagent/internal/ux"
)

func newAnalyzeCmd() *cobra.Command {
	var platform string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze the app codebases",
		Long: `Ask the text generation provider for issues and improvements across the
iOS and Android codebases. A successful answer is saved as
reports/analysis_<YYYYMMDD_HHMMSS>.json; a failure is printed and nothing is
saved.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !domain.Platform(platform).IsKnown() {
				return exitcode.Usage(fmt.Errorf("invalid platform %q: must be ios, android, or both", platform))
			}
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			adv, err := a.advisor(nil)
			if err != nil {
				return err
			}
			analysis, err := adv.AnalyzeCodebase(cmd.Context(), platform)
			if err != nil {
				return err
			}
			printGenerated(a, "Codebase analysis", analysis.AIInsights, analysis.Error, analysis.Path)
			return nil
		},
	}
	cmd.Flags().StringVar(&platform, "platform", string(domain.PlatformBoth), "platform to focus on: ios, android, both")
	return cmd
}

func newParityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parity",
		Short: "Check feature parity between the apps",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			adv, err := a.advisor(nil)
			if err != nil {
				return err
			}
			parity, err := adv.CheckParity(cmd.Context())
			if err != nil {
				return err
			}
			printGenerated(a, "Feature parity", parity.Analysis, parity.Error, parity.Path)
			return nil
		},
	}
}

func printGenerated(a *app, title, content, failure, path string) {
	st := a.styles()
	if failure != "" {
		fmt.Fprintf(a.out, "%s %s\n", st.Error.Render(title+" failed:"), failure)
		return
	}
	fmt.Fprintln(a.out, st.Title.Render(title))
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, content)
	fmt.Fprintf(a.out, "\n%s %s\n", st.Header.Render("Saved to:"), path)
}

func newSuggestCmd() *cobra.Command {
	var (
		developerContext string
		format           string
	)
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Create tasks suggested by the text generation provider",
		Long: `Ask for the next five high-impact tasks and add each usable suggestion to
the task store. Suggestions with an unknown priority are skipped.`,
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
			adv, err := a.advisor(s)
			if err != nil {
				return err
			}
			created, err := adv.SuggestTasks(cmd.Context(), developerContext)
			if err != nil {
				return err
			}
			if format == "text" {
				return f.Format(ux.TaskList(created))
			}
			return f.Format(ux.TaskList(created).Records())
		},
	}
	cmd.Flags().StringVar(&developerContext, "context", "", "what you are working on, included in the request")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")
	return cmd
}
