package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

const (
	StrategyREST           = "rest"
	DefaultDashboardWindow = 12 * time.Hour
	minWindow              = time.Minute
)

type dashboardResult struct {
	Timeseries []dashboardSlot `json:"timeseries"`
}

type dashboardSlot struct {
	Requests struct {
		All uint64 `json:"all"`
	} `json:"requests"`
	Bandwidth struct {
		All uint64 `json:"all"`
	} `json:"bandwidth"`
}

// DashboardFetcher reads the zone analytics dashboard time series and sums its buckets.
type DashboardFetcher struct {
	client *Client
	window time.Duration
}

func NewDashboardFetcher(client *Client, window time.Duration) *DashboardFetcher {
	if window < minWindow {
		window = DefaultDashboardWindow
	}
	return &DashboardFetcher{client: client, window: window}
}

func (f *DashboardFetcher) Name() string {
	return StrategyREST
}

func (f *DashboardFetcher) Window() time.Duration {
	return f.window
}

func (f *DashboardFetcher) FetchSample(
	ctx context.Context,
	zoneID string,
	creds domain.Credentials,
) (domain.Sample, error) {
	if zoneID == "" {
		return domain.Sample{}, fmt.Errorf("zone id is required")
	}

	query := url.Values{}
	query.Set("since", "-"+strconv.Itoa(int(f.window/time.Minute)))

	env, err := f.client.getEnvelope(ctx, request{
		Method: http.MethodGet,
		Path:   "/zones/" + url.PathEscape(zoneID) + "/analytics/dashboard",
		Query:  query,
		Token:  creds.APIToken,
	})
	if err != nil {
		return domain.Sample{}, err
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return domain.Sample{}, fmt.Errorf("%w: missing result node", ErrMalformedResponse)
	}

	var result dashboardResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return domain.Sample{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return sumDashboard(result.Timeseries), nil
}

func sumDashboard(slots []dashboardSlot) domain.Sample {
	var sample domain.Sample
	for _, slot := range slots {
		sample = sample.Add(domain.Sample{Requests: slot.Requests.All, Bandwidth: slot.Bandwidth.All})
	}
	return sample
}
