package models

import "time"

// StatsRecord holds the cumulative broadcast statistics.
// PeakListeners only ever goes up.
type StatsRecord struct {
	TotalListeners      uint       `json:"totalListeners"`
	PeakListeners       uint       `json:"peakListeners"`
	StreamUptimeSeconds int64      `json:"streamUptimeSeconds"`
	Bitrate             uint       `json:"bitrate"`
	SampleRate          uint       `json:"sampleRate"`
	StartedAt           *time.Time `json:"startedAt"`
}
