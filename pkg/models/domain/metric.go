package domain

// Sample is the traffic measured for one zone over the metric window.
// A zone without traffic is a zero Sample; a failed retrieval is reported
// as an error by the fetcher and never as a Sample.
type Sample struct {
	Requests  uint64
	Bandwidth uint64 // bytes
}

func (s Sample) Add(other Sample) Sample {
	return Sample{
		Requests:  s.Requests + other.Requests,
		Bandwidth: s.Bandwidth + other.Bandwidth,
	}
}
