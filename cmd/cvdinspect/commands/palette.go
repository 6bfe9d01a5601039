package commands

import (
	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/report"
)

// palette <source>: dominant colors and their contrast matrix
func paletteCmd(root *rootOptions) *cobra.Command {
	var (
		flags  analysisFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "palette <source>",
		Short: "Extract dominant colors and print their pairwise contrast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, root.cfg.Analysis.Options(), "palette")
			if err != nil {
				return err
			}

			result, err := root.app.Service().AnalyzeColorblindFriendliness(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return report.WriteJSON(out, result, false)
			}
			profile, err := root.profile(out)
			if err != nil {
				return err
			}
			return report.NewTextReporter(out, profile).WritePalette(result)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	return cmd
}
