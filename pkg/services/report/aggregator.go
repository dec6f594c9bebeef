package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// ErrNoZones covers both an account without zones and a failed listing call.
var ErrNoZones = errors.New("no zones found or error fetching zones")

const (
	defaultConcurrency = 4
	defaultCallTimeout = 15 * time.Second
)

type ZoneLister interface {
	ListZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error)
}

type Options struct {
	// Concurrency bounds the number of in-flight metric fetches of one run.
	Concurrency int
	// CallTimeout applies to the listing call and to every metric fetch.
	CallTimeout time.Duration
	// RequestsPerSecond paces metric fetches within one run; 0 disables pacing.
	RequestsPerSecond float64
	// OnTransition, when set, observes every state change of a run.
	OnTransition func(from, to State)
}

func DefaultOptions() Options {
	return Options{
		Concurrency: defaultConcurrency,
		CallTimeout: defaultCallTimeout,
	}
}

// Aggregator lists zones, fetches a sample per zone and folds the samples into a report.
// It holds no state across runs.
type Aggregator struct {
	lister  ZoneLister
	fetcher metrics.Fetcher
	opts    Options
}

func NewAggregator(lister ZoneLister, fetcher metrics.Fetcher, opts Options) *Aggregator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	return &Aggregator{
		lister:  lister,
		fetcher: fetcher,
		opts:    opts,
	}
}

type fetchResult struct {
	sample domain.Sample
	err    error
}

// run tracks the state of a single aggregation pass.
type run struct {
	state        State
	onTransition func(from, to State)
	logger       *zerolog.Logger
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.logger.Debug().Stringer("from", from).Stringer("to", to).Msg("aggregation state change")
	if r.onTransition != nil {
		r.onTransition(from, to)
	}
}

// Generate runs one aggregation pass. Caller cancellation is not propagated to
// in-flight calls; every call is bounded by the configured timeout instead.
func (a *Aggregator) Generate(ctx context.Context, creds domain.Credentials) (*domain.Report, error) {
	ctx = context.WithoutCancel(ctx)
	logger := zerolog.Ctx(ctx).With().Str("strategy", a.fetcher.Name()).Logger()
	ctx = logger.WithContext(ctx)

	r := &run{state: StateIdle, onTransition: a.opts.OnTransition, logger: &logger}

	r.transition(StateListingResources)
	zones, err := a.listZones(ctx, creds)
	if err != nil {
		r.transition(StateFailed)
		return nil, err
	}

	r.transition(StateFetchingMetrics)
	results := a.fetchAll(ctx, zones, creds)

	entries := make([]domain.ReportEntry, 0, len(zones))
	var totals domain.Totals
	failed := 0
	for i, zone := range zones {
		res := results[i]
		if res.err != nil {
			failed++
			logger.Warn().
				Err(res.err).
				Str("zone_id", zone.ID).
				Str("zone_name", zone.Name).
				Msg("failed to fetch zone metrics, zone excluded from report")
			continue
		}
		entries = append(entries, domain.ReportEntry{
			ZoneID:   zone.ID,
			ZoneName: zone.Name,
			Sample:   res.sample,
		})
		totals = totals.Add(res.sample)
	}
	r.transition(StateSummed)

	report := &domain.Report{
		Entries:  entries,
		Totals:   totals,
		Zones:    zones,
		Window:   a.fetcher.Window(),
		Strategy: a.fetcher.Name(),
	}
	r.transition(StateDone)

	logger.Info().
		Int("zones", len(zones)).
		Int("measured", len(entries)).
		Int("failed", failed).
		Uint64("requests", totals.Requests).
		Uint64("bandwidth", totals.Bandwidth).
		Msg("report generated")

	return report, nil
}

// ListZones runs only the listing step, with the same failure rules as Generate.
func (a *Aggregator) ListZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error) {
	return a.listZones(context.WithoutCancel(ctx), creds)
}

func (a *Aggregator) listZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error) {
	logger := zerolog.Ctx(ctx)

	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()

	zones, err := a.lister.ListZones(callCtx, creds)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to list zones")
		return nil, fmt.Errorf("%w: %w", ErrNoZones, err)
	}
	if len(zones) == 0 {
		logger.Warn().Msg("zone listing returned no zones")
		return nil, ErrNoZones
	}
	return zones, nil
}

// fetchAll fetches every zone with bounded concurrency. Results are indexed by
// listing position so the fold keeps listing order.
func (a *Aggregator) fetchAll(ctx context.Context, zones []domain.Zone, creds domain.Credentials) []fetchResult {
	results := make([]fetchResult, len(zones))

	var limiter *rate.Limiter
	if a.opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(a.opts.RequestsPerSecond), 1)
	}

	g := new(errgroup.Group)
	g.SetLimit(a.opts.Concurrency)
	for i, zone := range zones {
		i, zone := i, zone
		g.Go(func() error {
			sample, err := a.fetchOne(ctx, limiter, zone, creds)
			results[i] = fetchResult{sample: sample, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (a *Aggregator) fetchOne(
	ctx context.Context,
	limiter *rate.Limiter,
	zone domain.Zone,
	creds domain.Credentials,
) (sample domain.Sample, err error) {
	defer func() {
		if p := recover(); p != nil {
			sample, err = domain.Sample{}, fmt.Errorf("metric fetcher panicked: %v", p)
		}
	}()

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return domain.Sample{}, err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.opts.CallTimeout)
	defer cancel()

	return a.fetcher.FetchSample(callCtx, zone.ID, creds)
}
