package main

import (
	"fmt"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/server"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/store/cloudflare"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Traffic Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to an optional YAML settings file; environment variables take precedence")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	if err := settings.ValidateServer(); err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).
		Level(settings.Log.ZerologLevel()).
		With().Timestamp().Logger()

	creds := settings.Credentials()
	if !creds.HasToken() || (settings.Cloudflare.RequireAccount && creds.AccountID == "") {
		logger.Warn().Msg("Cloudflare credentials incomplete, report requests will fail until they are set")
	}

	client := cloudflare.NewClient(nil, settings.Cloudflare.BaseURL)
	fetcher, err := metrics.DefaultRegistry().Create(settings.Metrics.Strategy, client, metrics.Options{
		Window:     settings.Metrics.Window,
		MaxBuckets: settings.Metrics.MaxBuckets,
	})
	if err != nil {
		return fmt.Errorf("failed to create metric fetcher: %w", err)
	}

	aggregator := report.NewAggregator(
		cloudflare.NewLister(client, settings.Cloudflare.RequireAccount),
		fetcher,
		report.Options{
			Concurrency:       settings.Aggregator.Concurrency,
			CallTimeout:       settings.Aggregator.CallTimeout,
			RequestsPerSecond: settings.Aggregator.RequestsPerSecond,
		},
	)

	logger.Info().
		Str("strategy", fetcher.Name()).
		Dur("window", fetcher.Window()).
		Int("concurrency", settings.Aggregator.Concurrency).
		Msg("traffic aggregator configured")

	api := server.NewWebAPI(server.Config{
		Addr:            settings.Addr(),
		ShutdownTimeout: settings.Server.ShutdownTimeout,
		AuthToken:       settings.Server.AuthToken,
		Credentials:     creds,
		RequireAccount:  settings.Cloudflare.RequireAccount,
		Dependencies: server.Dependencies{
			Generator: aggregator,
			Logger:    logger,
		},
	})

	return api.Start()
}
