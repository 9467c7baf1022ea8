package dispatch

import (
	metrics "github.com/rcrowley/go-metrics"
)

type Stats struct {
	Submitted metrics.Counter
	Dropped   metrics.Counter
	Processed metrics.Counter
	Failed    metrics.Counter
	Latency   metrics.Timer
}

func newStats(r metrics.Registry) *Stats {
	return &Stats{
		Submitted: metrics.NewRegisteredCounter("dispatch.Submitted", r),
		Dropped:   metrics.NewRegisteredCounter("dispatch.Dropped", r),
		Processed: metrics.NewRegisteredCounter("dispatch.Processed", r),
		Failed:    metrics.NewRegisteredCounter("dispatch.Failed", r),
		Latency:   metrics.NewRegisteredTimer("dispatch.Latency", r)}
}
