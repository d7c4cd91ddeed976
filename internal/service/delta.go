// Package service provides the sampling, classification and dispatch logic
// for the host monitor.
package service

import (
	"hostmon/internal/model"
)

// DeltaTracker converts two cumulative CPU counter snapshots into a
// utilization fraction for the interval between them. It retains exactly the
// most recent sample; single-writer, touched only from the monitor loop.
type DeltaTracker struct {
	prev  model.CPUSample
	valid bool
}

// NewDeltaTracker creates an empty tracker. The first Update seeds the
// baseline without producing a fraction.
func NewDeltaTracker() *DeltaTracker {
	return &DeltaTracker{}
}

// Update stores sample as the new baseline and returns the utilization
// fraction for the interval since the previous sample.
//
// ok is false on the first call ever, and when any counter regressed between
// samples (counter wraparound or clock reset) — in that case the tracker
// reseeds from the new sample instead of reporting a nonsensical fraction.
func (t *DeltaTracker) Update(sample model.CPUSample) (fraction float64, ok bool) {
	prev, valid := t.prev, t.valid
	t.prev = sample
	t.valid = true

	if !valid {
		return 0, false
	}

	// Counters must be pointwise non-decreasing for the delta to mean anything.
	if sample.User < prev.User || sample.Nice < prev.Nice ||
		sample.System < prev.System || sample.Idle < prev.Idle {
		return 0, false
	}

	used := sample.Busy() - prev.Busy()
	total := used + (sample.Idle - prev.Idle)
	if total == 0 {
		return 0, false
	}

	return float64(used) / float64(total), true
}
