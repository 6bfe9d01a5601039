package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/report"
	"go-cvd-inspector/internal/simulate"
)

// simulate <source> --type <deficiency> --out <png>
func simulateCmd(root *rootOptions) *cobra.Command {
	var (
		deficiency string
		out        string
		severity   float64
		model      string
	)

	cmd := &cobra.Command{
		Use:   "simulate <source>",
		Short: "Render how an image looks with one color-vision deficiency",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := simulate.ParseDeficiency(deficiency)
			if err != nil {
				return err
			}

			opts := root.cfg.Analysis.Options().WithoutPalette()
			if cmd.Flags().Changed("severity") {
				opts = opts.WithSeverity(severity)
			}
			if cmd.Flags().Changed("model") {
				opts = opts.WithModel(model)
			}

			result, err := root.app.Service().AnalyzeColorblindFriendliness(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if err := report.SaveImage(out, result.Simulations[d].ToNRGBA()); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s simulation (%s, severity %.2f) written to %s\n",
				d.Title(), result.Options.SimulationModel, result.Options.DeficiencySeverity, out)
			return err
		},
	}

	cmd.Flags().StringVarP(&deficiency, "type", "t", "deuteranomaly", "deficiency: deuteranomaly, protanomaly, tritanomaly")
	cmd.Flags().StringVar(&out, "out", "", "output PNG path")
	cmd.Flags().Float64Var(&severity, "severity", 1.0, "deficiency severity in [0, 1]")
	cmd.Flags().StringVar(&model, "model", "machado2009", "simulation model: machado2009, vienot1999")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
