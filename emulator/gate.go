package emulator

import (
	"time"
)

// Gate fires at most once per Interval of elapsed time.
type Gate struct {
	Interval time.Duration // Minimum time between firings.

	last time.Time
}

// Reset restarts the interval at now.
func (gate *Gate) Reset(now time.Time) {
	gate.last = now
}

// Ready returns true, and restarts the interval, once at least Interval has
// elapsed since the last firing. An unstarted gate starts at now.
func (gate *Gate) Ready(now time.Time) (ready bool) {
	if gate.last.IsZero() {
		gate.last = now
		return
	}

	if now.Sub(gate.last) < gate.Interval {
		return
	}

	gate.last = now
	ready = true

	return
}

// Next returns the earliest time the gate can fire.
func (gate *Gate) Next() time.Time {
	return gate.last.Add(gate.Interval)
}
