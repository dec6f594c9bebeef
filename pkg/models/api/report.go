package api

type ReportEntry struct {
	ZoneName  string `json:"zoneName"`
	Requests  uint64 `json:"requests"`
	Bandwidth uint64 `json:"bandwidth"`
}

type Totals struct {
	Requests  uint64 `json:"requests"`
	Bandwidth uint64 `json:"bandwidth"`
}

type Zone struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

type Report struct {
	Report []ReportEntry `json:"report"`
	Totals Totals        `json:"totals"`
	Zones  []Zone        `json:"zones,omitempty"`
}
