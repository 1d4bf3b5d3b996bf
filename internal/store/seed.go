package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"myradio/internal/models"
)

// DefaultPlaylist is what the station shipped with before any playlist
// was pushed through the API.
func DefaultPlaylist() []models.PlaylistEntry {
	return []models.PlaylistEntry{
		{ID: 1, Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", Duration: 354},
		{ID: 2, Title: "Stairway to Heaven", Artist: "Led Zeppelin", Album: "Led Zeppelin IV", Duration: 482},
		{ID: 3, Title: "Hotel California", Artist: "Eagles", Album: "Hotel California", Duration: 391},
		{ID: 4, Title: "Imagine", Artist: "John Lennon", Album: "Imagine", Duration: 183},
		{ID: 5, Title: "Sweet Child O Mine", Artist: "Guns N' Roses", Album: "Appetite for Destruction", Duration: 356},
	}
}

// LoadPlaylistFile reads playlist entries from a YAML file:
//
//	playlist:
//	  - id: 1
//	    title: Imagine
//	    artist: John Lennon
func LoadPlaylistFile(path string) ([]models.PlaylistEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Playlist []models.PlaylistEntry `yaml:"playlist"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("playlist seed %s: %w", path, err)
	}
	return file.Playlist, nil
}

// SeedPlaylist writes the playlist document if it does not exist yet,
// from seedFile when set, otherwise from DefaultPlaylist.
func SeedPlaylist(ctx context.Context, s *Store, seedFile string) error {
	var existing []models.PlaylistEntry
	err := s.Read(ctx, Playlist, &existing)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) && !IsKind(err, ReadCorrupt) {
		return err
	}

	entries := DefaultPlaylist()
	if seedFile != "" {
		if entries, err = LoadPlaylistFile(seedFile); err != nil {
			return err
		}
	}

	if err := s.Write(ctx, Playlist, entries); err != nil {
		return err
	}
	log.Printf("🌱 Seeded playlist with %d tracks", len(entries))
	return nil
}
