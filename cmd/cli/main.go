package main

import (
	"context"
	"fmt"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
	if os.Getenv("ATLAS_DEBUG") != "" {
		logger = logger.Level(zerolog.DebugLevel)
	}
	ctx := logger.WithContext(context.Background())

	cli := terminal.NewCLI(terminal.Options{
		Registry: metrics.DefaultRegistry(),
		Output:   os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
