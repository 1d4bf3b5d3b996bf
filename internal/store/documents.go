package store

import (
	"context"
	"errors"
	"log"
	"time"

	"myradio/internal/models"
)

// readOrDefault treats a missing or corrupt document as def. Only real
// I/O failures are returned.
func readOrDefault[T any](ctx context.Context, s *Store, doc Document, def T) (T, error) {
	var v T
	err := s.Read(ctx, doc, &v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, ErrNotFound):
		return def, nil
	case IsKind(err, ReadCorrupt):
		log.Printf("⚠️ %v (serving defaults)", err)
		return def, nil
	}
	return def, err
}

func ReadCurrentTrack(ctx context.Context, s *Store) (models.CurrentTrackDocument, error) {
	return readOrDefault(ctx, s, CurrentTrack, models.OfflineCurrentTrack(models.StateOffline, time.Time{}))
}

func ReadHistory(ctx context.Context, s *Store) ([]models.TrackRecord, error) {
	h, err := readOrDefault(ctx, s, History, []models.TrackRecord{})
	if h == nil {
		h = []models.TrackRecord{}
	}
	return h, err
}

func ReadStats(ctx context.Context, s *Store) (models.StatsRecord, error) {
	return readOrDefault(ctx, s, Stats, models.StatsRecord{})
}

func ReadListeners(ctx context.Context, s *Store) ([]models.Listener, error) {
	l, err := readOrDefault(ctx, s, Listeners, []models.Listener{})
	if l == nil {
		l = []models.Listener{}
	}
	return l, err
}

func ReadPlaylist(ctx context.Context, s *Store) ([]models.PlaylistEntry, error) {
	p, err := readOrDefault(ctx, s, Playlist, []models.PlaylistEntry{})
	if p == nil {
		p = []models.PlaylistEntry{}
	}
	return p, err
}
