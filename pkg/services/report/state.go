package report

// State is a step of one aggregation run.
type State int

const (
	StateIdle State = iota
	StateListingResources
	StateFetchingMetrics
	StateSummed
	StateDone
	// StateFailed is reachable only from StateListingResources.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListingResources:
		return "listing_resources"
	case StateFetchingMetrics:
		return "fetching_metrics"
	case StateSummed:
		return "summed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
