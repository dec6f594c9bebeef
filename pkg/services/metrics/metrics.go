package metrics

import (
	"context"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

// Fetcher retrieves the traffic sample of one zone over a fixed window.
// A non-nil error means no sample; a zone without traffic yields a zero sample.
type Fetcher interface {
	// Name returns the strategy name the fetcher was registered under
	Name() string
	Window() time.Duration
	FetchSample(ctx context.Context, zoneID string, creds domain.Credentials) (domain.Sample, error)
}

// Options configure a fetcher at construction time.
type Options struct {
	Window     time.Duration
	MaxBuckets int
}
