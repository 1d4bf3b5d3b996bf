// Package cache provides the time-bounded memoization used by the read path.
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"myradio/internal/clock"
)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
	ttl       time.Duration
}

func (e entry[T]) live(now time.Time) bool {
	return now.Sub(e.fetchedAt) < e.ttl
}

// TTLCache memoizes fetch results per key for a fixed TTL.
//
// The mutex only guards the entry map; fetches run outside it, and
// concurrent misses on the same key share one fetch. Failed fetches are
// never cached.
type TTLCache[T any] struct {
	clock clock.Clock
	group singleflight.Group

	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry[T]
	// gen is bumped by Invalidate so an in-flight fetch started before
	// the invalidation does not store its (possibly stale) result.
	gen map[string]uint64
}

// New creates a cache whose entries live for ttl.
func New[T any](ttl time.Duration, clk clock.Clock) *TTLCache[T] {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TTLCache[T]{
		clock:   clk,
		ttl:     ttl,
		entries: make(map[string]entry[T]),
		gen:     make(map[string]uint64),
	}
}

// Get returns the cached value for key, calling fetch when the entry is
// missing or expired. The second return reports a miss.
func (c *TTLCache[T]) Get(key string, fetch func() (T, error)) (T, bool, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && e.live(c.clock.Now()) {
		c.mu.Unlock()
		return e.value, false, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		// Another caller may have filled it while we queued.
		if e, ok := c.entries[key]; ok && e.live(c.clock.Now()) {
			c.mu.Unlock()
			return e.value, nil
		}
		gen := c.gen[key]
		c.mu.Unlock()

		value, err := fetch()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen[key] == gen {
			c.entries[key] = entry[T]{value: value, fetchedAt: c.clock.Now(), ttl: c.ttl}
		}
		c.mu.Unlock()
		return value, nil
	})
	if err != nil {
		var zero T
		return zero, true, err
	}
	return v.(T), true, nil
}

// Set stores value for key as if it had just been fetched.
func (c *TTLCache[T]) Set(key string, value T) {
	c.mu.Lock()
	c.gen[key]++
	c.entries[key] = entry[T]{value: value, fetchedAt: c.clock.Now(), ttl: c.ttl}
	c.mu.Unlock()
}

// Invalidate expires key so the next Get goes through to fetch.
func (c *TTLCache[T]) Invalidate(key string) {
	c.mu.Lock()
	c.gen[key]++
	delete(c.entries, key)
	c.mu.Unlock()
}

// SetTTL changes the TTL for entries stored from now on.
func (c *TTLCache[T]) SetTTL(ttl time.Duration) {
	c.mu.Lock()
	c.ttl = ttl
	c.mu.Unlock()
}

// TTL returns the current TTL.
func (c *TTLCache[T]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}
