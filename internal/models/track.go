package models

import "time"

// TrackInfo is what the upstream server says is on air right now.
type TrackInfo struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre,omitempty"`
}

// SameAs reports whether two tracks are the same song for history purposes.
// Genre is ignored: enrichment may fill it in later.
func (t TrackInfo) SameAs(o TrackInfo) bool {
	return t.Title == o.Title && t.Artist == o.Artist
}

// TrackRecord is one entry of the play history. Records are immutable once
// created and only disappear when the log is trimmed.
type TrackRecord struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Artist   string    `json:"artist"`
	Genre    string    `json:"genre"`
	PlayedAt time.Time `json:"playedAt"`

	// Live relays carry no duration, this is a fixed estimate.
	DurationEstimateSeconds int `json:"duration"`
}
