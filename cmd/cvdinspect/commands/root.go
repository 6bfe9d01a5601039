package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"go-cvd-inspector/internal/config"
	"go-cvd-inspector/internal/container"
	"go-cvd-inspector/internal/logger"
)

// ErrIssuesFound is returned with --fail-on-issues when any pair is flagged
var ErrIssuesFound = errors.New("contrast issues found")

type rootOptions struct {
	configPath string
	logLevel   string
	color      string
	workers    int

	cfg *config.Config
	app *container.Container
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, ErrIssuesFound) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return err
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "cvdinspect",
		Short:         "Check whether an image stays readable for color-blind viewers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			logger.Configure(cmd.ErrOrStderr(), opts.logLevel, false)

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = opts.workers
			}
			opts.cfg = cfg

			app, err := container.NewContainer(cfg, container.CLIMode)
			if err != nil {
				return err
			}
			opts.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app != nil {
				return opts.app.Close()
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CVD_CONFIG"), "config file (YAML, TOML or JSON)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.color, "color", "auto", "color swatches: auto, always, never")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "worker goroutines (0 = one per CPU)")

	root.AddCommand(analyzeCmd(opts), paletteCmd(opts), simulateCmd(opts), versionCmd())
	return root
}

// profile picks the swatch color profile for w
func (o *rootOptions) profile(w io.Writer) (termenv.Profile, error) {
	switch o.color {
	case "always":
		return termenv.TrueColor, nil
	case "never":
		return termenv.Ascii, nil
	case "auto", "":
		return termenv.NewOutput(w).EnvColorProfile(), nil
	default:
		return termenv.Ascii, fmt.Errorf("invalid --color %q: want auto, always or never", o.color)
	}
}
