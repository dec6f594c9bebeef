package report

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Zone), args.Error(1)
}

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Name() string { return "mock" }
func (m *mockFetcher) Window() time.Duration { return 12 * time.Hour }

func (m *mockFetcher) FetchSample(ctx context.Context, zoneID string, creds domain.Credentials) (domain.Sample, error) {
	args := m.Called(ctx, zoneID, creds)
	return args.Get(0).(domain.Sample), args.Error(1)
}

// funcFetcher lets tests control timing and panics directly.
type funcFetcher func(ctx context.Context, zoneID string) (domain.Sample, error)

func (f funcFetcher) Name() string { return "func" }
func (f funcFetcher) Window() time.Duration { return time.Hour }
func (f funcFetcher) FetchSample(ctx context.Context, zoneID string, _ domain.Credentials) (domain.Sample, error) {
	return f(ctx, zoneID)
}

var creds = domain.Credentials{APIToken: "tok", AccountID: "acc"}

func zonesAB() []domain.Zone {
	return []domain.Zone{
		{ID: "a", Name: "a.com", Status: "active"},
		{ID: "b", Name: "b.com", Status: "active"},
	}
}

func TestAggregator_Generate_SumsAllZonesInListingOrder(t *testing.T) {
	lister := new(mockLister)
	fetcher := new(mockFetcher)
	lister.On("ListZones", mock.Anything, creds).Return([]domain.Zone{
		{ID: "a", Name: "a.com"}, {ID: "b", Name: "b.com"}, {ID: "c", Name: "c.com"},
	}, nil)
	fetcher.On("FetchSample", mock.Anything, "a", creds).Return(domain.Sample{Requests: 10, Bandwidth: 100}, nil)
	fetcher.On("FetchSample", mock.Anything, "b", creds).Return(domain.Sample{Requests: 5, Bandwidth: 50}, nil)
	fetcher.On("FetchSample", mock.Anything, "c", creds).Return(domain.Sample{}, nil)

	report, err := NewAggregator(lister, fetcher, DefaultOptions()).Generate(context.Background(), creds)

	require.NoError(t, err)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, []string{"a.com", "b.com", "c.com"}, entryNames(report.Entries))
	assert.Equal(t, domain.Totals{Requests: 15, Bandwidth: 150}, report.Totals)
	assert.Equal(t, domain.SumEntries(report.Entries), report.Totals)
	assert.Equal(t, "mock", report.Strategy)
	assert.Equal(t, 12*time.Hour, report.Window)
	lister.AssertNumberOfCalls(t, "ListZones", 1)
	fetcher.AssertNumberOfCalls(t, "FetchSample", 3)
}

func TestAggregator_Generate_FailedZoneIsExcluded(t *testing.T) {
	// Given: zone b fails to fetch
	lister := new(mockLister)
	fetcher := new(mockFetcher)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)
	fetcher.On("FetchSample", mock.Anything, "a", creds).Return(domain.Sample{Requests: 7, Bandwidth: 70}, nil)
	fetcher.On("FetchSample", mock.Anything, "b", creds).Return(domain.Sample{}, errors.New("boom"))

	// When
	report, err := NewAggregator(lister, fetcher, DefaultOptions()).Generate(context.Background(), creds)

	// Then
	require.NoError(t, err)
	assert.Equal(t, []domain.ReportEntry{
		{ZoneID: "a", ZoneName: "a.com", Sample: domain.Sample{Requests: 7, Bandwidth: 70}},
	}, report.Entries)
	assert.Equal(t, domain.Totals{Requests: 7, Bandwidth: 70}, report.Totals)
	assert.Equal(t, zonesAB(), report.Zones)
}

func TestAggregator_Generate_ZeroSampleIsKeptButFailureIsNot(t *testing.T) {
	lister := new(mockLister)
	fetcher := new(mockFetcher)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)
	fetcher.On("FetchSample", mock.Anything, "a", creds).Return(domain.Sample{}, nil)
	fetcher.On("FetchSample", mock.Anything, "b", creds).Return(domain.Sample{}, errors.New("no sample"))

	report, err := NewAggregator(lister, fetcher, DefaultOptions()).Generate(context.Background(), creds)

	require.NoError(t, err)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, "a", report.Entries[0].ZoneID)
	assert.Equal(t, domain.Sample{}, report.Entries[0].Sample)
}

func TestAggregator_Generate_AllFetchesFailYieldsEmptyReport(t *testing.T) {
	lister := new(mockLister)
	fetcher := new(mockFetcher)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)
	fetcher.On("FetchSample", mock.Anything, mock.Anything, creds).Return(domain.Sample{}, errors.New("down"))

	report, err := NewAggregator(lister, fetcher, DefaultOptions()).Generate(context.Background(), creds)

	require.NoError(t, err)
	assert.NotNil(t, report.Entries)
	assert.Empty(t, report.Entries)
	assert.Equal(t, domain.Totals{}, report.Totals)
}

func TestAggregator_Generate_EmptyOrFailedListing(t *testing.T) {
	listErr := errors.New("listing unreachable")

	tests := []struct {
		name     string
		zones    []domain.Zone
		err      error
		wantWrap error
	}{
		{name: "no zones", zones: []domain.Zone{}},
		{name: "listing error", err: listErr, wantWrap: listErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := new(mockLister)
			fetcher := new(mockFetcher)
			if tt.err != nil {
				lister.On("ListZones", mock.Anything, creds).Return(nil, tt.err)
			} else {
				lister.On("ListZones", mock.Anything, creds).Return(tt.zones, nil)
			}

			var states []State
			opts := DefaultOptions()
			opts.OnTransition = func(_, to State) { states = append(states, to) }

			report, err := NewAggregator(lister, fetcher, opts).Generate(context.Background(), creds)

			assert.Nil(t, report)
			assert.ErrorIs(t, err, ErrNoZones)
			if tt.wantWrap != nil {
				assert.ErrorIs(t, err, tt.wantWrap)
			}
			assert.Equal(t, []State{StateListingResources, StateFailed}, states)
			fetcher.AssertNotCalled(t, "FetchSample", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAggregator_Generate_StateSequence(t *testing.T) {
	lister := new(mockLister)
	fetcher := new(mockFetcher)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)
	fetcher.On("FetchSample", mock.Anything, "a", creds).Return(domain.Sample{Requests: 1}, nil)
	fetcher.On("FetchSample", mock.Anything, "b", creds).Return(domain.Sample{}, errors.New("fail"))

	var transitions [][2]State
	opts := DefaultOptions()
	opts.OnTransition = func(from, to State) { transitions = append(transitions, [2]State{from, to}) }

	_, err := NewAggregator(lister, fetcher, opts).Generate(context.Background(), creds)

	require.NoError(t, err)
	assert.Equal(t, [][2]State{
		{StateIdle, StateListingResources},
		{StateListingResources, StateFetchingMetrics},
		{StateFetchingMetrics, StateSummed},
		{StateSummed, StateDone},
	}, transitions)
}

func TestAggregator_Generate_ConcurrentFetchesKeepListingOrder(t *testing.T) {
	zones := make([]domain.Zone, 0, 20)
	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		zones = append(zones, domain.Zone{ID: id, Name: id + ".com"})
	}
	lister := new(mockLister)
	lister.On("ListZones", mock.Anything, creds).Return(zones, nil)

	var inFlight, peak int32
	fetcher := funcFetcher(func(ctx context.Context, zoneID string) (domain.Sample, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// Later zones finish first.
		time.Sleep(time.Duration('z'-rune(zoneID[0])) * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return domain.Sample{Requests: 1, Bandwidth: uint64(zoneID[0])}, nil
	})

	report, err := NewAggregator(lister, fetcher, Options{Concurrency: 5}).Generate(context.Background(), creds)

	require.NoError(t, err)
	require.Len(t, report.Entries, len(zones))
	for i, e := range report.Entries {
		assert.Equal(t, zones[i].Name, e.ZoneName)
	}
	assert.Equal(t, uint64(20), report.Totals.Requests)
	assert.Equal(t, domain.SumEntries(report.Entries), report.Totals)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(5))
}

func TestAggregator_Generate_PanicAndTimeoutAreIsolated(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListZones", mock.Anything, creds).Return([]domain.Zone{
		{ID: "ok", Name: "ok.com"}, {ID: "panic", Name: "panic.com"}, {ID: "slow", Name: "slow.com"},
	}, nil)

	fetcher := funcFetcher(func(ctx context.Context, zoneID string) (domain.Sample, error) {
		switch zoneID {
		case "panic":
			panic("unexpected payload")
		case "slow":
			<-ctx.Done()
			return domain.Sample{}, ctx.Err()
		}
		return domain.Sample{Requests: 3, Bandwidth: 30}, nil
	})

	report, err := NewAggregator(lister, fetcher, Options{CallTimeout: 20 * time.Millisecond}).
		Generate(context.Background(), creds)

	require.NoError(t, err)
	assert.Equal(t, []string{"ok.com"}, entryNames(report.Entries))
	assert.Equal(t, domain.Totals{Requests: 3, Bandwidth: 30}, report.Totals)
}

func TestAggregator_Generate_CallerCancellationDoesNotAbortFetches(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	var once sync.Once
	fetcher := funcFetcher(func(fctx context.Context, zoneID string) (domain.Sample, error) {
		once.Do(cancel)
		if err := fctx.Err(); err != nil {
			return domain.Sample{}, err
		}
		return domain.Sample{Requests: 1}, nil
	})

	report, err := NewAggregator(lister, fetcher, Options{Concurrency: 1}).Generate(ctx, creds)

	require.NoError(t, err)
	assert.Len(t, report.Entries, 2)
}

func TestAggregator_Generate_RequestPacing(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil)
	fetcher := funcFetcher(func(ctx context.Context, zoneID string) (domain.Sample, error) {
		return domain.Sample{Requests: 1}, nil
	})

	start := time.Now()
	report, err := NewAggregator(lister, fetcher, Options{RequestsPerSecond: 20}).Generate(context.Background(), creds)

	require.NoError(t, err)
	assert.Len(t, report.Entries, 2)
	// Second fetch waits for a new token: ~50ms at 20 rps.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestAggregator_ListZones(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListZones", mock.Anything, creds).Return(zonesAB(), nil).Once()
	lister.On("ListZones", mock.Anything, domain.Credentials{APIToken: "other"}).Return([]domain.Zone{}, nil).Once()
	agg := NewAggregator(lister, new(mockFetcher), DefaultOptions())

	zones, err := agg.ListZones(context.Background(), creds)
	require.NoError(t, err)
	assert.Equal(t, zonesAB(), zones)

	_, err = agg.ListZones(context.Background(), domain.Credentials{APIToken: "other"})
	assert.ErrorIs(t, err, ErrNoZones)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "listing_resources", StateListingResources.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}

func entryNames(entries []domain.ReportEntry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.ZoneName)
	}
	return names
}
