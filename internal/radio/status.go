package radio

import (
	"strings"

	"myradio/internal/icecast"
	"myradio/internal/metadata"
	"myradio/internal/models"
)

// DeriveStatus turns one Icecast status into the StreamStatus the rest of
// the system works with. A nil source means the mount is not live.
func DeriveStatus(st *icecast.Status) models.StreamStatus {
	status := models.StreamStatus{Server: serverInfo(st.Server)}

	src := st.Source
	if src == nil {
		return status
	}

	track := trackFromSource(src)
	status.IsOnline = true
	status.CurrentTrack = &track
	status.Listeners = uint(src.Listeners)
	status.ListenerPeak = uint(src.ListenerPeak)
	status.Bitrate = uint(src.Bitrate)
	status.SampleRate = uint(src.SampleRate)
	status.Mount = src.Mount
	if started, ok := src.StartedAt(); ok {
		status.StreamStartedAt = &started
	}
	return status
}

func trackFromSource(src *icecast.Source) models.TrackInfo {
	track := models.TrackInfo{Genre: strings.TrimSpace(src.Genre)}

	// Some source clients send artist and title separately.
	if artist := strings.TrimSpace(src.Artist); artist != "" && strings.TrimSpace(src.Title) != "" {
		track.Artist = artist
		track.Title = strings.TrimSpace(src.Title)
		return track
	}

	var raw *string
	if src.HasTitle {
		raw = &src.Title
	}
	parts := metadata.ParseTitle(raw)
	if parts == nil {
		track.Artist = metadata.UnknownArtist
		track.Title = metadata.UnknownTitle
		return track
	}

	track.Artist = parts.Artist
	track.Title = parts.Title
	if track.Artist == "" {
		track.Artist = metadata.UnknownArtist
	}
	if track.Title == "" {
		track.Title = metadata.UnknownTitle
	}
	return track
}

func serverInfo(s icecast.Icestats) models.ServerInfo {
	info := models.ServerInfo{Version: s.ServerID, Host: s.Host, Location: s.Location}
	if info.Version == "" {
		info.Version = "Unknown"
	}
	if info.Location == "" {
		info.Location = "Unknown"
	}
	return info
}
