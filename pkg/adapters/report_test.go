package adapters

import (
	"encoding/json"
	"testing"

	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.Report {
	entries := []domain.ReportEntry{
		{ZoneID: "a", ZoneName: "a.com", Sample: domain.Sample{Requests: 10, Bandwidth: 100}},
		{ZoneID: "c", ZoneName: "c.com", Sample: domain.Sample{Requests: 1, Bandwidth: 2}},
	}
	return &domain.Report{
		Entries: entries,
		Totals:  domain.SumEntries(entries),
		Zones: []domain.Zone{
			{ID: "a", Name: "a.com", Status: "active"},
			{ID: "b", Name: "b.com", Status: "active"},
			{ID: "c", Name: "c.com", Status: "active"},
		},
	}
}

func TestMapReportDomainToApi_WireShape(t *testing.T) {
	out := MapReportDomainToApi(sampleReport(), false)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"report": [
			{"zoneName": "a.com", "requests": 10, "bandwidth": 100},
			{"zoneName": "c.com", "requests": 1, "bandwidth": 2}
		],
		"totals": {"requests": 11, "bandwidth": 102}
	}`, string(raw))
}

func TestMapReportDomainToApi_IncludeZones(t *testing.T) {
	out := MapReportDomainToApi(sampleReport(), true)

	assert.Equal(t, []api.Zone{
		{ID: "a", Name: "a.com", Status: "active"},
		{ID: "b", Name: "b.com", Status: "active"},
		{ID: "c", Name: "c.com", Status: "active"},
	}, out.Zones)
}

func TestMapReportDomainToApi_EmptyEntriesSerializeAsArray(t *testing.T) {
	raw, err := json.Marshal(MapReportDomainToApi(&domain.Report{}, false))

	require.NoError(t, err)
	assert.JSONEq(t, `{"report": [], "totals": {"requests": 0, "bandwidth": 0}}`, string(raw))
}

func TestMapReportDomainToApi_IsDeterministic(t *testing.T) {
	first, err := json.Marshal(MapReportDomainToApi(sampleReport(), true))
	require.NoError(t, err)
	second, err := json.Marshal(MapReportDomainToApi(sampleReport(), true))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
