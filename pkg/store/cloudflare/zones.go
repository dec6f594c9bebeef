package cloudflare

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

const (
	zonesPerPage = 50
	// maxZonePages bounds pagination against a backend that never reports the last page.
	maxZonePages = 1000
)

type zoneRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Lister enumerates the active zones visible to a credential.
type Lister struct {
	client         *Client
	requireAccount bool
}

func NewLister(client *Client, requireAccount bool) *Lister {
	return &Lister{client: client, requireAccount: requireAccount}
}

// ListZones walks every page of active zones. Any failing page fails the whole listing.
// Duplicate ids are dropped, keeping the first occurrence.
func (l *Lister) ListZones(ctx context.Context, creds domain.Credentials) ([]domain.Zone, error) {
	if creds.APIToken == "" {
		return nil, ErrMissingToken
	}
	if l.requireAccount && creds.AccountID == "" {
		return nil, ErrMissingAccount
	}

	var zones []domain.Zone
	seen := make(map[string]struct{})

	for page := 1; page <= maxZonePages; page++ {
		query := url.Values{}
		query.Set("status", "active")
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(zonesPerPage))
		if creds.AccountID != "" {
			query.Set("account.id", creds.AccountID)
		}

		env, err := l.client.getEnvelope(ctx, request{
			Method: http.MethodGet,
			Path:   "/zones",
			Query:  query,
			Token:  creds.APIToken,
		})
		if err != nil {
			return nil, fmt.Errorf("list zones page %d: %w", page, err)
		}

		var records []zoneRecord
		if len(env.Result) > 0 && string(env.Result) != "null" {
			if err := json.Unmarshal(env.Result, &records); err != nil {
				return nil, fmt.Errorf("list zones page %d: %w: %v", page, ErrMalformedResponse, err)
			}
		}

		for _, r := range records {
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			zones = append(zones, domain.Zone{ID: r.ID, Name: r.Name, Status: r.Status})
		}

		if env.ResultInfo == nil || env.ResultInfo.Page >= env.ResultInfo.TotalPages || len(records) == 0 {
			break
		}
	}

	return zones, nil
}
