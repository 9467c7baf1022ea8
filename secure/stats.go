package secure

import (
	metrics "github.com/rcrowley/go-metrics"
)

type Stats struct {
	Sealed    metrics.Counter
	Opened    metrics.Counter
	Forged    metrics.Counter
	Plaintext metrics.Counter
	Replayed  metrics.Counter
}

func newStats(r metrics.Registry) *Stats {
	return &Stats{
		Sealed:    metrics.NewRegisteredCounter("secure.Sealed", r),
		Opened:    metrics.NewRegisteredCounter("secure.Opened", r),
		Forged:    metrics.NewRegisteredCounter("secure.Forged", r),
		Plaintext: metrics.NewRegisteredCounter("secure.Plaintext", r),
		Replayed:  metrics.NewRegisteredCounter("secure.Replayed", r)}
}
