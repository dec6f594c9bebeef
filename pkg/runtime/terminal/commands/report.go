package commands

import (
	"fmt"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/store/cloudflare"
	"github.com/spf13/cobra"
)

type ReportCmd struct {
	profileFlags
	strategy    string
	window      time.Duration
	maxBuckets  int
	concurrency int
	rps         float64
	output      string
	deps        Deps
	reporter    *export.Reporter
}

func NewReportCmd(deps Deps, reporter *export.Reporter) *cobra.Command {
	rc := &ReportCmd{deps: deps, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate request and bandwidth totals across all zones",
		RunE:  rc.run,
	}

	rc.profileFlags.register(cmd)
	cmd.Flags().StringVar(&rc.strategy, "strategy", "",
		fmt.Sprintf("Metric strategy %v (default is the profile's, then %s)", deps.Registry.ListStrategies(), cloudflare.StrategyREST))
	cmd.Flags().DurationVar(&rc.window, "window", 0, "Metric window, e.g. 12h or 720h (default depends on strategy)")
	cmd.Flags().IntVar(&rc.maxBuckets, "max-buckets", cloudflare.DefaultMaxBuckets, "Daily buckets requested by the graphql strategy")
	cmd.Flags().IntVar(&rc.concurrency, "concurrency", 4, "Concurrent metric fetches")
	cmd.Flags().Float64Var(&rc.rps, "rps", 0, "Metric fetches per second, 0 for unpaced")
	cmd.Flags().StringVarP(&rc.output, "output", "o", export.FormatTable, "Output format: table or json")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	profile, err := rc.load(ctx)
	if err != nil {
		return err
	}

	aggregator, err := rc.deps.newAggregator(profile, rc.strategy, rc.requireAccount,
		metrics.Options{
			Window:     rc.window,
			MaxBuckets: rc.maxBuckets,
		},
		report.Options{
			Concurrency:       rc.concurrency,
			CallTimeout:       report.DefaultOptions().CallTimeout,
			RequestsPerSecond: rc.rps,
		},
	)
	if err != nil {
		return err
	}

	result, err := aggregator.Generate(ctx, profile.Credentials)
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return rc.reporter.Handle(result, rc.output)
}
