package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/report"
)

// analyze <source>: full colorblind-friendliness check
func analyzeCmd(root *rootOptions) *cobra.Command {
	var (
		flags        analysisFlags
		output       string
		panelWidth   int
		asJSON       bool
		withImages   bool
		failOnIssues bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Simulate color-vision deficiencies and flag low-contrast dominant colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd, root.cfg.Analysis.Options(), flags.mode)
			if err != nil {
				return err
			}

			result, err := root.app.Service().AnalyzeColorblindFriendliness(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			if output != "" {
				if result.Simulations == nil {
					return fmt.Errorf("--output needs the simulations; use --mode full or fast")
				}
				if err := report.SaveComposite(output, result, panelWidth); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				err = report.WriteJSON(out, result, withImages)
			} else {
				profile, perr := root.profile(out)
				if perr != nil {
					return perr
				}
				err = report.NewTextReporter(out, profile).WriteAnalysis(result)
				if err == nil && output != "" {
					_, err = fmt.Fprintf(out, "\nComparison image written to %s\n", output)
				}
			}
			if err != nil {
				return err
			}

			if failOnIssues && len(result.ContrastIssues) > 0 {
				return ErrIssuesFound
			}
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write a 2x2 comparison PNG to this path")
	cmd.Flags().IntVar(&panelWidth, "panel-width", report.DefaultPanelWidth, "width of each panel in the comparison PNG")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of text")
	cmd.Flags().BoolVar(&withImages, "include-images", false, "embed base64 PNG simulations in JSON output")
	cmd.Flags().BoolVar(&failOnIssues, "fail-on-issues", false, "exit with status 2 when any pair is flagged")
	return cmd
}
