package adapters

import (
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
)

// MapReportDomainToApi shapes an aggregated report for the HTTP API. The entry
// list is never nil so an all-failed run still serializes as "report": [].
func MapReportDomainToApi(report *domain.Report, includeZones bool) api.Report {
	out := api.Report{
		Report: make([]api.ReportEntry, 0),
	}
	if report == nil {
		return out
	}

	for _, e := range report.Entries {
		out.Report = append(out.Report, MapReportEntryDomainToApi(e))
	}
	out.Totals = api.Totals{
		Requests:  report.Totals.Requests,
		Bandwidth: report.Totals.Bandwidth,
	}
	if includeZones {
		out.Zones = MapZonesDomainToApi(report.Zones)
	}

	return out
}

func MapReportEntryDomainToApi(e domain.ReportEntry) api.ReportEntry {
	return api.ReportEntry{
		ZoneName:  e.ZoneName,
		Requests:  e.Requests,
		Bandwidth: e.Bandwidth,
	}
}
