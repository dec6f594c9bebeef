package commands

import (
	"fmt"

	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/spf13/cobra"
)

type ZonesCmd struct {
	profileFlags
	output   string
	deps     Deps
	reporter *export.Reporter
}

func NewZonesCmd(deps Deps, reporter *export.Reporter) *cobra.Command {
	zc := &ZonesCmd{deps: deps, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List the active zones visible to a profile",
		RunE:  zc.run,
	}

	zc.profileFlags.register(cmd)
	cmd.Flags().StringVarP(&zc.output, "output", "o", export.FormatTable, "Output format: table or json")

	return cmd
}

func (zc *ZonesCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	profile, err := zc.load(ctx)
	if err != nil {
		return err
	}

	aggregator, err := zc.deps.newAggregator(profile, "", zc.requireAccount, metrics.Options{}, report.DefaultOptions())
	if err != nil {
		return err
	}

	zones, err := aggregator.ListZones(ctx, profile.Credentials)
	if err != nil {
		return fmt.Errorf("failed to list zones: %w", err)
	}

	return zc.reporter.HandleZones(zones, zc.output)
}

type StrategiesCmd struct {
	deps Deps
}

func NewStrategiesCmd(deps Deps) *cobra.Command {
	sc := &StrategiesCmd{deps: deps}
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the supported metric strategies",
		RunE:  sc.run,
	}
}

func (sc *StrategiesCmd) run(cmd *cobra.Command, _ []string) error {
	for _, s := range sc.deps.Registry.ListStrategies() {
		fmt.Fprintln(cmd.OutOrStdout(), s)
	}
	return nil
}
