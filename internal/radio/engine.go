// Package radio runs the sync loop: the only writer of the broadcast state.
package radio

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"myradio/internal/clock"
	"myradio/internal/history"
	"myradio/internal/icecast"
	"myradio/internal/listeners"
	"myradio/internal/models"
	"myradio/internal/stats"
	"myradio/internal/store"
)

const (
	DefaultInterval = 5 * time.Second
	genreTimeout    = 3 * time.Second
)

// Source is the upstream status feed.
type Source interface {
	FetchStatus(ctx context.Context) (*icecast.Status, error)
	Mount() string
}

// GenreResolver looks up a genre for tracks the stream does not tag.
type GenreResolver interface {
	LookupGenre(ctx context.Context, artist, title string) (string, error)
}

// Publisher receives every snapshot the engine produces, whether or not
// it could be persisted.
type Publisher interface {
	Publish(snap models.Snapshot)
}

type Options struct {
	Interval         time.Duration
	HistoryLimit     int
	DurationEstimate time.Duration
	Clock            clock.Clock
	Genres           GenreResolver
	Locator          listeners.Locator
	MaxSimulated     int
	Publisher        Publisher
}

type Engine struct {
	source    Source
	state     *StateManager
	clock     clock.Clock
	interval  time.Duration
	genres    GenreResolver
	publisher Publisher

	history *history.Tracker
	stats   *stats.Aggregator
	roster  *listeners.Roster

	running sync.Mutex // held while a cycle is in flight
	cycles  sync.WaitGroup
	skipped atomic.Int64
}

// New restores the previous run's state from st and returns an engine
// ready to Run.
func New(ctx context.Context, src Source, st *store.Store, opts Options) (*Engine, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	sm := NewStateManager(st)
	restored, err := sm.Restore(ctx)
	if err != nil {
		return nil, fmt.Errorf("restore state: %w", err)
	}

	return &Engine{
		source:    src,
		state:     sm,
		clock:     opts.Clock,
		interval:  opts.Interval,
		genres:    opts.Genres,
		publisher: opts.Publisher,
		history:   history.NewTracker(opts.HistoryLimit, opts.DurationEstimate, opts.Clock, restored.History),
		stats:     stats.NewAggregator(restored.Stats, opts.Clock),
		roster:    listeners.NewRoster(opts.Clock, opts.Locator, opts.MaxSimulated, restored.Listeners),
	}, nil
}

// Run syncs once immediately and then on every tick until ctx is done.
// A tick that fires while a cycle is still running is dropped. Run
// returns after the in-flight cycle, if any, has finished.
func (e *Engine) Run(ctx context.Context) error {
	log.Printf("📡 Sync loop started (mount %q, every %s)", e.source.Mount(), e.interval)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			e.cycles.Wait()
			log.Println("🛑 Sync loop stopped")
			return nil
		case <-ticker.C:
			e.trigger(ctx)
		}
	}
}

func (e *Engine) trigger(ctx context.Context) {
	if !e.running.TryLock() {
		e.skipped.Add(1)
		syncSkipped.Inc()
		log.Println("⏭️  Previous sync still running, skipping tick")
		return
	}

	e.cycles.Add(1)
	go func() {
		defer e.cycles.Done()
		defer e.running.Unlock()
		// Shutdown waits for the cycle instead of aborting it halfway.
		if err := e.Sync(context.WithoutCancel(ctx)); err != nil {
			log.Printf("❌ Sync: %v", err)
		}
	}()
}

// Skipped returns how many ticks were dropped because of overlap.
func (e *Engine) Skipped() int64 {
	return e.skipped.Load()
}

// Sync runs one cycle: fetch, derive, fold, persist, publish.
func (e *Engine) Sync(ctx context.Context) error {
	timer := prometheus.NewTimer(syncDuration)
	defer timer.ObserveDuration()

	now := e.clock.Now()
	st, err := e.source.FetchStatus(ctx)
	if err != nil {
		return e.unreachable(ctx, now, err)
	}

	status := DeriveStatus(st)
	state := models.StateOffline
	if status.IsOnline {
		state = models.StateLive
		track := *status.CurrentTrack
		if e.history.Changed(track) {
			track.Genre = e.enrich(ctx, track)
			if rec := e.history.Observe(track); rec != nil {
				tracksPlayed.Inc()
				log.Printf("🎵 Now playing: %s - %s", rec.Artist, rec.Title)
			}
		}
		status.CurrentTrack = &track
	}

	record := e.stats.Observe(status)
	current := models.CurrentTrackDocument{StreamStatus: status, State: state, UpdatedAt: now}
	snap := models.Snapshot{
		Current:   &current,
		History:   e.history.Records(),
		Stats:     &record,
		Listeners: e.roster.Snapshot(status.Listeners),
	}

	listenersGauge.Set(float64(status.Listeners))
	peakGauge.Set(float64(record.PeakListeners))
	onlineGauge.Set(boolToFloat(status.IsOnline))

	if err := e.commit(ctx, snap); err != nil {
		return err
	}
	syncCycles.WithLabelValues("ok").Inc()
	return nil
}

// unreachable only replaces the current document. History, stats and the
// roster keep their last good values.
func (e *Engine) unreachable(ctx context.Context, now time.Time, fetchErr error) error {
	kind, _ := icecast.KindOf(fetchErr)
	fetchErrors.WithLabelValues(kind.String()).Inc()
	onlineGauge.Set(0)
	log.Printf("⚠️ Icecast fetch failed (%s): %v", kind, fetchErr)

	current := models.OfflineCurrentTrack(models.StateUnreachable, now)
	if err := e.commit(ctx, models.Snapshot{Current: &current}); err != nil {
		return err
	}
	syncCycles.WithLabelValues("fetch_error").Inc()
	return nil
}

func (e *Engine) commit(ctx context.Context, snap models.Snapshot) error {
	if e.publisher != nil {
		e.publisher.Publish(snap)
	}
	if err := e.state.Persist(ctx, snap); err != nil {
		syncCycles.WithLabelValues("persist_error").Inc()
		return fmt.Errorf("persist: %w", err)
	}
	return nil
}

func (e *Engine) enrich(ctx context.Context, track models.TrackInfo) string {
	if e.genres == nil || track.Genre != "" {
		return track.Genre
	}
	ctx, cancel := context.WithTimeout(ctx, genreTimeout)
	defer cancel()

	genre, err := e.genres.LookupGenre(ctx, track.Artist, track.Title)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("⚠️ Genre lookup for %q failed: %v", track.Title, err)
		}
		return ""
	}
	return genre
}

// Connect adds a listener to the roster and publishes the new roster
// right away instead of waiting for the next cycle.
func (e *Engine) Connect(ctx context.Context, req listeners.ConnectRequest) (models.Listener, error) {
	l := e.roster.Connect(req)
	log.Printf("👋 Listener connected: %s (%s)", l.Name, l.ID)
	return l, e.commitRoster(ctx)
}

// Disconnect removes a listener. It reports false when id was unknown.
func (e *Engine) Disconnect(ctx context.Context, id string) (bool, error) {
	if !e.roster.Disconnect(id) {
		return false, nil
	}
	log.Printf("👋 Listener disconnected: %s", id)
	return true, e.commitRoster(ctx)
}

func (e *Engine) commitRoster(ctx context.Context) error {
	roster := e.roster.Snapshot(e.stats.Snapshot().TotalListeners)
	return e.commit(ctx, models.Snapshot{Listeners: roster})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
