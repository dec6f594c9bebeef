package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

const (
	StrategyGraphQL      = "graphql"
	DefaultGraphQLWindow = 30 * 24 * time.Hour
	DefaultMaxBuckets    = 30
	graphQLDateLayout    = "2006-01-02"
)

const zoneTrafficQuery = `query ZoneTraffic($zoneTag: string, $since: Date!, $until: Date!, $limit: uint64!) {
  viewer {
    zones(filter: {zoneTag: $zoneTag}) {
      httpRequests1dGroups(limit: $limit, orderBy: [date_DESC], filter: {date_geq: $since, date_leq: $until}) {
        dimensions {
          date
        }
        sum {
          requests
          bytes
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data *struct {
		Viewer *struct {
			Zones []struct {
				// Pointer so that an absent node is told apart from an empty one.
				Groups *[]httpRequestsGroup `json:"httpRequests1dGroups"`
			} `json:"zones"`
		} `json:"viewer"`
	} `json:"data"`
	Errors []Message `json:"errors"`
}

type httpRequestsGroup struct {
	Sum struct {
		Requests uint64 `json:"requests"`
		Bytes    uint64 `json:"bytes"`
	} `json:"sum"`
}

const day = 24 * time.Hour

// GraphQLFetcher reads pre-aggregated daily sums from the GraphQL analytics API.
type GraphQLFetcher struct {
	client     *Client
	days       int
	maxBuckets int
	now        func() time.Time
}

// NewGraphQLFetcher sizes the window in whole days, rounding a partial day up.
// The day count never exceeds maxBuckets so every requested date fits in one response.
func NewGraphQLFetcher(client *Client, window time.Duration, maxBuckets int) *GraphQLFetcher {
	if window <= 0 {
		window = DefaultGraphQLWindow
	}
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxBuckets
	}

	days := int((window + day - 1) / day)
	if days > maxBuckets {
		days = maxBuckets
	}

	return &GraphQLFetcher{
		client:     client,
		days:       days,
		maxBuckets: maxBuckets,
		now:        time.Now,
	}
}

// WithClock replaces the time source used to compute the date filter.
func (f *GraphQLFetcher) WithClock(now func() time.Time) *GraphQLFetcher {
	f.now = now
	return f
}

func (f *GraphQLFetcher) Name() string {
	return StrategyGraphQL
}

func (f *GraphQLFetcher) Window() time.Duration {
	return time.Duration(f.days) * day
}

func (f *GraphQLFetcher) FetchSample(
	ctx context.Context,
	zoneID string,
	creds domain.Credentials,
) (domain.Sample, error) {
	if zoneID == "" {
		return domain.Sample{}, fmt.Errorf("zone id is required")
	}

	// date_geq and date_leq are inclusive: the span holds exactly f.days dates.
	until := f.now().UTC()
	since := until.AddDate(0, 0, -(f.days - 1))

	body, err := f.client.send(ctx, request{
		Method: http.MethodPost,
		Path:   "/graphql",
		Token:  creds.APIToken,
		Body: graphQLRequest{
			Query: zoneTrafficQuery,
			Variables: map[string]any{
				"zoneTag": zoneID,
				"since":   since.Format(graphQLDateLayout),
				"until":   until.Format(graphQLDateLayout),
				"limit":   f.maxBuckets,
			},
		},
	})
	if err != nil {
		return domain.Sample{}, err
	}

	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Sample{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(resp.Errors) > 0 {
		return domain.Sample{}, &GraphQLError{Errors: resp.Errors}
	}
	if resp.Data == nil || resp.Data.Viewer == nil || len(resp.Data.Viewer.Zones) == 0 {
		return domain.Sample{}, fmt.Errorf("%w: missing zones node", ErrMalformedResponse)
	}

	groups := resp.Data.Viewer.Zones[0].Groups
	if groups == nil {
		return domain.Sample{}, fmt.Errorf("%w: missing httpRequests1dGroups node", ErrMalformedResponse)
	}

	var sample domain.Sample
	for _, g := range *groups {
		sample = sample.Add(domain.Sample{Requests: g.Sum.Requests, Bandwidth: g.Sum.Bytes})
	}
	return sample, nil
}
