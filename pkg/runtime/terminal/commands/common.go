package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/store/cloudflare"
	"github.com/spf13/cobra"
)

const (
	defaultProfile    = "default"
	profileConfigFile = ".atlascfg"
)

// Deps are shared by every command.
type Deps struct {
	Registry metrics.Registry
	// BaseURL and HTTPClient override the Cloudflare endpoint, mostly for tests.
	BaseURL    string
	HTTPClient cloudflare.HTTPClient
}

// newAggregator wires the lister and the fetcher for strategy over one client.
// An empty strategy falls back to the profile's, then to REST.
func (d Deps) newAggregator(
	profile *config.Profile,
	strategy string,
	requireAccount bool,
	metricOpts metrics.Options,
	opts report.Options,
) (*report.Aggregator, error) {
	if strategy == "" {
		strategy = profile.Strategy
	}
	if strategy == "" {
		strategy = cloudflare.StrategyREST
	}

	client := cloudflare.NewClient(d.HTTPClient, d.BaseURL)
	fetcher, err := d.Registry.Create(strategy, client, metricOpts)
	if err != nil {
		return nil, err
	}

	return report.NewAggregator(cloudflare.NewLister(client, requireAccount), fetcher, opts), nil
}

// profileFlags select a credential profile from the ini profile file.
type profileFlags struct {
	configPath     string
	profile        string
	requireAccount bool
}

func (pf *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&pf.configPath, "config", "c", defaultConfigPath(),
		"Path to the profile file (default is $HOME/"+profileConfigFile+")")
	cmd.Flags().StringVarP(&pf.profile, "profile", "p", defaultProfile, "Profile name in the profile file")
	cmd.Flags().BoolVar(&pf.requireAccount, "require-account", false,
		"Fail when the profile carries no account_id")
}

func (pf *profileFlags) load(ctx context.Context) (*config.Profile, error) {
	registry, err := config.NewRegistry(pf.configPath)
	if err != nil {
		return nil, err
	}
	profile, err := registry.GetProfile(ctx, pf.profile)
	if err != nil {
		return nil, err
	}
	if !profile.Credentials.HasToken() {
		return nil, fmt.Errorf("profile %s has no api_token: %w", pf.profile, cloudflare.ErrMissingToken)
	}
	if pf.requireAccount && profile.Credentials.AccountID == "" {
		return nil, fmt.Errorf("profile %s has no account_id: %w", pf.profile, cloudflare.ErrMissingAccount)
	}
	return profile, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return profileConfigFile
	}
	return filepath.Join(home, profileConfigFile)
}
