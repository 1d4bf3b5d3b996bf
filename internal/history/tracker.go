// Package history keeps the bounded, most-recent-first play log.
package history

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"myradio/internal/clock"
	"myradio/internal/models"
)

const DefaultLimit = 100

// Tracker turns a stream of "now playing" observations into history
// records. A record is created only when (title, artist) changes.
type Tracker struct {
	mu       sync.Mutex
	limit    int
	estimate time.Duration
	clock    clock.Clock
	entropy  *ulid.MonotonicEntropy

	records []models.TrackRecord
	last    *models.TrackInfo
}

// NewTracker restores a tracker from a persisted log (newest first). The
// newest record becomes the last observed pair.
func NewTracker(limit int, estimate time.Duration, clk clock.Clock, seed []models.TrackRecord) *Tracker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if clk == nil {
		clk = clock.Real{}
	}

	t := &Tracker{
		limit:    limit,
		estimate: estimate,
		clock:    clk,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}

	if len(seed) > limit {
		seed = seed[:limit]
	}
	t.records = append([]models.TrackRecord(nil), seed...)
	if len(t.records) > 0 {
		newest := t.records[0]
		t.last = &models.TrackInfo{Title: newest.Title, Artist: newest.Artist, Genre: newest.Genre}
	}
	return t
}

// Changed reports whether track would start a new record.
func (t *Tracker) Changed(track models.TrackInfo) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.changed(track)
}

func (t *Tracker) changed(track models.TrackInfo) bool {
	return t.last == nil || !t.last.SameAs(track)
}

// Observe records track if it differs from the last observed one and
// returns the new record, or nil when nothing changed.
func (t *Tracker) Observe(track models.TrackInfo) *models.TrackRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.changed(track) {
		return nil
	}

	now := t.clock.Now()
	rec := models.TrackRecord{
		ID:                      ulid.MustNew(ulid.Timestamp(now), t.entropy).String(),
		Title:                   track.Title,
		Artist:                  track.Artist,
		Genre:                   track.Genre,
		PlayedAt:                now,
		DurationEstimateSeconds: int(t.estimate / time.Second),
	}

	records := make([]models.TrackRecord, 0, min(len(t.records)+1, t.limit))
	records = append(records, rec)
	records = append(records, t.records...)
	if len(records) > t.limit {
		records = records[:t.limit]
	}
	t.records = records

	last := track
	t.last = &last
	return &rec
}

// Records returns a copy of the full log, newest first.
func (t *Tracker) Records() []models.TrackRecord {
	return t.Recent(0)
}

// Recent returns at most n records, newest first. n <= 0 means all.
func (t *Tracker) Recent(n int) []models.TrackRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n <= 0 || n > len(t.records) {
		n = len(t.records)
	}
	out := make([]models.TrackRecord, n)
	copy(out, t.records[:n])
	return out
}
