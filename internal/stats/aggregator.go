// Package stats folds stream status observations into cumulative
// listener and throughput statistics.
package stats

import (
	"fmt"
	"sync"
	"time"

	"myradio/internal/clock"
	"myradio/internal/models"
)

// Aggregator owns the running StatsRecord. PeakListeners never decreases,
// including across restarts when seeded from the persisted record.
type Aggregator struct {
	mu     sync.Mutex
	clock  clock.Clock
	record models.StatsRecord
}

func NewAggregator(seed models.StatsRecord, clk clock.Clock) *Aggregator {
	if clk == nil {
		clk = clock.Real{}
	}
	if seed.PeakListeners < seed.TotalListeners {
		seed.PeakListeners = seed.TotalListeners
	}
	return &Aggregator{clock: clk, record: seed}
}

// Observe applies one status and returns the updated record.
//
// Listener totals and stream format are overwritten. Uptime is derived
// from the stream start when known, otherwise it keeps its last value.
func (a *Aggregator) Observe(status models.StreamStatus) models.StatsRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &a.record
	r.TotalListeners = status.Listeners
	if status.Listeners > r.PeakListeners {
		r.PeakListeners = status.Listeners
	}
	r.Bitrate = status.Bitrate
	r.SampleRate = status.SampleRate

	if status.StreamStartedAt != nil {
		started := *status.StreamStartedAt
		r.StartedAt = &started
		uptime := a.clock.Now().Sub(started)
		if uptime < 0 {
			uptime = 0
		}
		r.StreamUptimeSeconds = int64(uptime / time.Second)
	}

	return a.snapshot()
}

// Snapshot returns a copy of the current record.
func (a *Aggregator) Snapshot() models.StatsRecord {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregator) snapshot() models.StatsRecord {
	out := a.record
	if a.record.StartedAt != nil {
		started := *a.record.StartedAt
		out.StartedAt = &started
	}
	return out
}

// FormatUptime renders seconds the way the player shows it: "1h 5m" or "5m".
func FormatUptime(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := time.Duration(seconds) * time.Second
	hours := int64(d / time.Hour)
	minutes := int64((d % time.Hour) / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
