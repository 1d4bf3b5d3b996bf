// Package query is the read side: every request is answered from a TTL
// cache that falls through to the state store on expiry.
package query

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"myradio/internal/cache"
	"myradio/internal/clock"
	"myradio/internal/models"
	"myradio/internal/stats"
	"myradio/internal/store"
)

// Kind names one cached view.
type Kind string

const (
	KindCurrentTrack Kind = "current"
	KindStreamStatus Kind = "stream-status"
	KindHistory      Kind = "history"
	KindStats        Kind = "stats"
	KindListeners    Kind = "listeners"
	KindPlaylist     Kind = "playlist"
)

const (
	DefaultHistoryView = 20
	MaxHistoryView     = 100

	DefaultCurrentTrackTTL = 3 * time.Second
	DefaultStreamStatusTTL = 5 * time.Second
	DefaultDocumentTTL     = 5 * time.Second
)

var cacheLookups = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "radio_query_cache_lookups_total", Help: "Read cache lookups"},
	[]string{"kind", "result"},
)

func RegisterMetrics() {
	prometheus.MustRegister(cacheLookups)
}

type Options struct {
	StreamURL   string
	Host        string // fallback for serverInfo.host
	HistoryView int
	Clock       clock.Clock

	CurrentTrackTTL time.Duration
	StreamStatusTTL time.Duration
	DocumentTTL     time.Duration
}

// Service answers every read. It never talks to Icecast.
type Service struct {
	store       *store.Store
	clock       clock.Clock
	streamURL   string
	host        string
	historyView int

	current   *cache.TTLCache[models.CurrentTrackDocument]
	status    *cache.TTLCache[StreamStatusView]
	history   *cache.TTLCache[[]models.TrackRecord]
	stats     *cache.TTLCache[models.StatsRecord]
	listeners *cache.TTLCache[[]models.Listener]
	playlist  *cache.TTLCache[[]models.PlaylistEntry]
}

func New(st *store.Store, opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.HistoryView <= 0 {
		opts.HistoryView = DefaultHistoryView
	}
	if opts.CurrentTrackTTL <= 0 {
		opts.CurrentTrackTTL = DefaultCurrentTrackTTL
	}
	if opts.StreamStatusTTL <= 0 {
		opts.StreamStatusTTL = DefaultStreamStatusTTL
	}
	if opts.DocumentTTL <= 0 {
		opts.DocumentTTL = DefaultDocumentTTL
	}

	clk := opts.Clock
	return &Service{
		store:       st,
		clock:       clk,
		streamURL:   opts.StreamURL,
		host:        opts.Host,
		historyView: min(opts.HistoryView, MaxHistoryView),
		current:     cache.New[models.CurrentTrackDocument](opts.CurrentTrackTTL, clk),
		status:      cache.New[StreamStatusView](opts.StreamStatusTTL, clk),
		history:     cache.New[[]models.TrackRecord](opts.DocumentTTL, clk),
		stats:       cache.New[models.StatsRecord](opts.DocumentTTL, clk),
		listeners:   cache.New[[]models.Listener](opts.DocumentTTL, clk),
		playlist:    cache.New[[]models.PlaylistEntry](opts.DocumentTTL, clk),
	}
}

// SetTTLs applies new TTLs to entries stored from now on. Zero keeps the
// current value.
func (s *Service) SetTTLs(currentTrack, streamStatus, document time.Duration) {
	if currentTrack > 0 {
		s.current.SetTTL(currentTrack)
	}
	if streamStatus > 0 {
		s.status.SetTTL(streamStatus)
	}
	if document > 0 {
		s.history.SetTTL(document)
		s.stats.SetTTL(document)
		s.listeners.SetTTL(document)
		s.playlist.SetTTL(document)
	}
	log.Printf("⏱️  Cache TTLs: current=%s stream-status=%s documents=%s",
		s.current.TTL(), s.status.TTL(), s.history.TTL())
	s.RefreshAll()
}

func get[T any](c *cache.TTLCache[T], kind Kind, fetch func() (T, error)) (T, error) {
	v, miss, err := c.Get(string(kind), fetch)
	result := "hit"
	switch {
	case err != nil:
		result = "error"
	case miss:
		result = "miss"
	}
	cacheLookups.WithLabelValues(string(kind), result).Inc()
	if err != nil {
		return v, fmt.Errorf("%s: %w", kind, err)
	}
	return v, nil
}

func (s *Service) CurrentTrack(ctx context.Context) (models.CurrentTrackDocument, error) {
	return get(s.current, KindCurrentTrack, func() (models.CurrentTrackDocument, error) {
		return store.ReadCurrentTrack(ctx, s.store)
	})
}

func (s *Service) StreamStatus(ctx context.Context) (StreamStatusView, error) {
	return get(s.status, KindStreamStatus, func() (StreamStatusView, error) {
		current, err := s.CurrentTrack(ctx)
		if err != nil {
			return StreamStatusView{}, err
		}
		record, err := s.Stats(ctx)
		if err != nil {
			return StreamStatusView{}, err
		}
		return s.buildStatusView(current, record), nil
	})
}

// History returns the n most recent plays. n <= 0 uses the default view
// size; n is capped at MaxHistoryView.
func (s *Service) History(ctx context.Context, n int) ([]models.TrackRecord, error) {
	if n <= 0 {
		n = s.historyView
	}
	n = min(n, MaxHistoryView)

	all, err := get(s.history, KindHistory, func() ([]models.TrackRecord, error) {
		return store.ReadHistory(ctx, s.store)
	})
	if err != nil {
		return []models.TrackRecord{}, err
	}
	n = min(n, len(all))
	out := make([]models.TrackRecord, n)
	copy(out, all[:n])
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (models.StatsRecord, error) {
	return get(s.stats, KindStats, func() (models.StatsRecord, error) {
		return store.ReadStats(ctx, s.store)
	})
}

func (s *Service) Listeners(ctx context.Context) ([]models.Listener, error) {
	l, err := get(s.listeners, KindListeners, func() ([]models.Listener, error) {
		return store.ReadListeners(ctx, s.store)
	})
	return append([]models.Listener{}, l...), err
}

func (s *Service) Playlist(ctx context.Context) ([]models.PlaylistEntry, error) {
	p, err := get(s.playlist, KindPlaylist, func() ([]models.PlaylistEntry, error) {
		return store.ReadPlaylist(ctx, s.store)
	})
	return append([]models.PlaylistEntry{}, p...), err
}

// ReplacePlaylist swaps the whole playlist document.
func (s *Service) ReplacePlaylist(ctx context.Context, entries []models.PlaylistEntry) error {
	if entries == nil {
		entries = []models.PlaylistEntry{}
	}
	if err := s.store.Write(ctx, store.Playlist, entries); err != nil {
		s.playlist.Invalidate(string(KindPlaylist))
		return err
	}
	s.playlist.Set(string(KindPlaylist), append([]models.PlaylistEntry{}, entries...))
	log.Printf("📝 Playlist replaced (%d tracks)", len(entries))
	return nil
}

// Refresh drops the cached entry for kind so the next read goes to the store.
func (s *Service) Refresh(kind Kind) error {
	switch kind {
	case KindCurrentTrack:
		s.current.Invalidate(string(kind))
		s.status.Invalidate(string(KindStreamStatus))
	case KindStreamStatus:
		s.status.Invalidate(string(kind))
	case KindHistory:
		s.history.Invalidate(string(kind))
	case KindStats:
		s.stats.Invalidate(string(kind))
		s.status.Invalidate(string(KindStreamStatus))
	case KindListeners:
		s.listeners.Invalidate(string(kind))
	case KindPlaylist:
		s.playlist.Invalidate(string(kind))
	default:
		return fmt.Errorf("unknown view %q", kind)
	}
	return nil
}

// RefreshAll drops every cached view.
func (s *Service) RefreshAll() {
	for _, k := range []Kind{KindCurrentTrack, KindStreamStatus, KindHistory, KindStats, KindListeners, KindPlaylist} {
		s.Refresh(k)
	}
}

// Publish primes the caches with a freshly synced snapshot, so readers see
// it even when it could not be persisted.
func (s *Service) Publish(snap models.Snapshot) {
	if snap.Stats != nil {
		s.stats.Set(string(KindStats), *snap.Stats)
	}
	if snap.History != nil {
		s.history.Set(string(KindHistory), append([]models.TrackRecord{}, snap.History...))
	}
	if snap.Listeners != nil {
		s.listeners.Set(string(KindListeners), append([]models.Listener{}, snap.Listeners...))
	}
	if snap.Current != nil {
		s.current.Set(string(KindCurrentTrack), *snap.Current)
		if snap.Stats != nil {
			s.status.Set(string(KindStreamStatus), s.buildStatusView(*snap.Current, *snap.Stats))
		} else {
			s.status.Invalidate(string(KindStreamStatus))
		}
	}
}

func (s *Service) buildStatusView(current models.CurrentTrackDocument, record models.StatsRecord) StreamStatusView {
	v := StreamStatusView{
		IsOnline:      current.IsOnline,
		State:         current.State,
		Listeners:     current.Listeners,
		PeakListeners: max(record.PeakListeners, current.ListenerPeak),
		Bitrate:       current.Bitrate,
		SampleRate:    current.SampleRate,
		CurrentTrack:  current.CurrentTrack,
		StreamURL:     s.streamURL,
		Uptime:        "0m",
		ServerInfo:    current.Server,
		LastUpdate:    current.UpdatedAt,
	}
	if v.ServerInfo.Host == "" {
		v.ServerInfo.Host = s.host
	}
	if current.IsOnline && current.StreamStartedAt != nil {
		v.Uptime = stats.FormatUptime(int64(s.clock.Now().Sub(*current.StreamStartedAt) / time.Second))
	}
	return v
}
