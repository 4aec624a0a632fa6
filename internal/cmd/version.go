package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/pmagent/internal/version"
)

func newVersionCmd() *cobra.Command {
	var (
		versionVerbose bool
		versionJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print version information including version number, git commit,
build date, Go version, and platform.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			out := cmd.OutOrStdout()

			// JSON output
			if versionJSON {
				data, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal version info: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			// Verbose output
			if versionVerbose {
				fmt.Fprintln(out, info.String())
				return nil
			}

			// Default output (short version only)
			fmt.Fprintf(out, "pmagent %s\n", info.Short())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "show detailed version information")
	cmd.Flags().BoolVar(&versionJSON, "json", false, "output version information as JSON")
	return cmd
}
