package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/de-tools/traffic-atlas/pkg/store/cloudflare"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	deps     commands.Deps
	reporter *export.Reporter
	rootCmd  *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry   metrics.Registry
	Output     io.Writer
	BaseURL    string
	HTTPClient cloudflare.HTTPClient
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Registry == nil {
		opts.Registry = metrics.DefaultRegistry()
	}

	cli := &CLI{
		deps: commands.Deps{
			Registry:   opts.Registry,
			BaseURL:    opts.BaseURL,
			HTTPClient: opts.HTTPClient,
		},
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides os.Args, used by tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "atlas",
		Short:         "Cloudflare traffic reporting tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewReportCmd(cli.deps, cli.reporter))
	cmd.AddCommand(commands.NewZonesCmd(cli.deps, cli.reporter))
	cmd.AddCommand(commands.NewStrategiesCmd(cli.deps))

	return cmd
}
