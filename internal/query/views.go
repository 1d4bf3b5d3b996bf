package query

import (
	"time"

	"myradio/internal/metadata"
	"myradio/internal/models"
)

// StreamStatusView is the payload of /api/radio/stream-status.
type StreamStatusView struct {
	IsOnline      bool              `json:"isOnline"`
	State         string            `json:"state"`
	Listeners     uint              `json:"listeners"`
	PeakListeners uint              `json:"peakListeners"`
	Bitrate       uint              `json:"bitrate"`
	SampleRate    uint              `json:"sampleRate"`
	CurrentTrack  *models.TrackInfo `json:"currentTrack"`
	StreamURL     string            `json:"streamUrl"`
	Uptime        string            `json:"uptime"`
	ServerInfo    models.ServerInfo `json:"serverInfo"`
	LastUpdate    time.Time         `json:"lastUpdate"`
	Unavailable   bool              `json:"unavailable,omitempty"`
}

// PlayerView is the payload of /api/radio/current.
type PlayerView struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Genre       string `json:"genre,omitempty"`
	Duration    int    `json:"duration"`
	CurrentTime int    `json:"currentTime"`
	IsPlaying   bool   `json:"isPlaying"`
	StreamURL   string `json:"streamUrl"`
	Listeners   uint   `json:"listeners"`
	Bitrate     uint   `json:"bitrate"`
	IsLive      bool   `json:"isLive"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

const (
	WaitingTitle     = "Waiting for broadcast..."
	UnavailableTitle = "Service Unavailable"
	StationName      = "MyRadio"
)

// Player renders the current-track document for the player.
func (s *Service) Player(current models.CurrentTrackDocument) PlayerView {
	v := s.IdlePlayer(WaitingTitle)
	if !current.IsOnline {
		return v
	}

	v.Title, v.Artist = metadata.UnknownTitle, metadata.UnknownArtist
	if t := current.CurrentTrack; t != nil {
		if t.Title != "" {
			v.Title = t.Title
		}
		if t.Artist != "" {
			v.Artist = t.Artist
		}
		v.Genre = t.Genre
	}
	v.IsPlaying = true
	v.IsLive = true
	v.Listeners = current.Listeners
	v.Bitrate = current.Bitrate
	return v
}

// IdlePlayer is the player payload when nothing is on air.
func (s *Service) IdlePlayer(title string) PlayerView {
	return PlayerView{Title: title, Artist: StationName, StreamURL: s.streamURL}
}

// OfflineStatus is the stream-status payload served when reads fail.
func (s *Service) OfflineStatus() StreamStatusView {
	return StreamStatusView{
		State:      models.StateOffline,
		StreamURL:  s.streamURL,
		Uptime:     "0m",
		ServerInfo: models.ServerInfo{Version: "Unknown", Host: s.host, Location: "Unknown"},
		LastUpdate: s.clock.Now(),
	}
}
