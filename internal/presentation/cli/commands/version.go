package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/omniscience-ai/omniscience/internal/presentation/cli/output"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := GetFormatter()

			info := map[string]string{
				"version":    Version,
				"git_commit": GitCommit,
				"build_date": BuildDate,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			}

			if formatter.Format() == output.FormatJSON {
				return formatter.JSON(info)
			}

			formatter.Header("OmniScience")
			formatter.Item("Version", Version)
			formatter.Item("Commit", GitCommit)
			formatter.Item("Built", BuildDate)
			formatter.Item("Go", runtime.Version())
			formatter.Item("Platform", runtime.GOOS+"/"+runtime.GOARCH)
			return nil
		},
	}
}
