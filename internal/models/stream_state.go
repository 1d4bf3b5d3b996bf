package models

import "time"

// Current document states.
const (
	StateLive        = "live"
	StateOffline     = "offline"
	StateUnreachable = "unreachable"
)

// ServerInfo describes the Icecast instance itself (icestats top level).
type ServerInfo struct {
	Version  string `json:"version"`
	Host     string `json:"host"`
	Location string `json:"location"`
}

// StreamStatus is derived from the upstream on every poll. It is never
// persisted as such, the current-track document embeds a copy.
type StreamStatus struct {
	IsOnline        bool       `json:"isOnline"`
	CurrentTrack    *TrackInfo `json:"currentTrack"`
	Listeners       uint       `json:"listeners"`
	ListenerPeak    uint       `json:"listenerPeak"` // as reported by Icecast
	Bitrate         uint       `json:"bitrate"`
	SampleRate      uint       `json:"sampleRate"`
	StreamStartedAt *time.Time `json:"streamStartedAt"`
	Mount           string     `json:"mount,omitempty"`
	Server          ServerInfo `json:"serverInfo"`
}

// CurrentTrackDocument is the singleton "what is on air" document.
// It is always replaced as a whole.
type CurrentTrackDocument struct {
	StreamStatus
	State     string    `json:"state"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OfflineCurrentTrack is the placeholder served before the first sync and
// whenever the stream is down.
func OfflineCurrentTrack(state string, now time.Time) CurrentTrackDocument {
	if state == "" {
		state = StateOffline
	}
	return CurrentTrackDocument{
		StreamStatus: StreamStatus{Server: ServerInfo{Version: "Unknown", Location: "Unknown"}},
		State:        state,
		UpdatedAt:    now,
	}
}

// Snapshot is the in-memory result of one sync cycle, handed to the read
// side so it stays fresh even when persistence fails.
// A nil field means the document was not touched.
type Snapshot struct {
	Current   *CurrentTrackDocument
	History   []TrackRecord
	Stats     *StatsRecord
	Listeners []Listener
}
