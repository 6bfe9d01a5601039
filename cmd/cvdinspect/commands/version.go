package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/version"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "cvdinspect %s (%s)\n", version.Version, version.Commit)
			return err
		},
	}
}
