package domain

import "time"

// ReportEntry is the sample of one successfully measured zone.
type ReportEntry struct {
	ZoneID   string
	ZoneName string
	Sample
}

// Totals is the sum over all included report entries.
type Totals struct {
	Requests  uint64
	Bandwidth uint64
}

func (t Totals) Add(s Sample) Totals {
	return Totals{
		Requests:  t.Requests + s.Requests,
		Bandwidth: t.Bandwidth + s.Bandwidth,
	}
}

// Report represents the outcome of one aggregation pass
type Report struct {
	Entries []ReportEntry
	Totals  Totals
	// Zones is the listing the entries were measured from, in listing order.
	Zones    []Zone
	Window   time.Duration
	Strategy string
}

// SumEntries re-derives totals from entries.
func SumEntries(entries []ReportEntry) Totals {
	var t Totals
	for _, e := range entries {
		t = t.Add(e.Sample)
	}
	return t
}
