// Package metrics records packing activity. The Prometheus recorder backs the
// service's /metrics endpoint; the no-op recorder is used by tests and when
// metrics are disabled.
package metrics

import "time"

// Recorder receives observations about pack requests.
type Recorder interface {
	// ObservePack records a successful packing run.
	ObservePack(strategy string, duration time.Duration, bins int, utilization float64)
	// IncPackError counts a rejected or failed packing run.
	IncPackError(strategy, reason string)
}

// Nop discards every observation.
type Nop struct{}

// Compile-time assertion that Nop implements Recorder.
var _ Recorder = (*Nop)(nil)

// NewNop creates a no-op recorder.
func NewNop() *Nop {
	return &Nop{}
}

// ObservePack discards the observation.
func (n *Nop) ObservePack(_ string, _ time.Duration, _ int, _ float64) {}

// IncPackError discards the observation.
func (n *Nop) IncPackError(_, _ string) {}
