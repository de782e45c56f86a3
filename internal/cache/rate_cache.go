package cache

import (
	"sync"
	"time"

	"subpage-service/internal/entity"
)

type rateEntry struct {
	rate      float64
	fetchedAt time.Time
}

// RateCache holds provider rates per ordered currency pair.
// An entry is served only while now-fetchedAt < ttl; stale entries stay in
// the map until overwritten or removed by Sweep.
type RateCache struct {
	mu      sync.RWMutex
	entries map[entity.CurrencyPair]rateEntry
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*RateCache)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *RateCache) {
		c.now = now
	}
}

func NewRateCache(ttl time.Duration, opts ...Option) *RateCache {
	c := &RateCache{
		entries: make(map[entity.CurrencyPair]rateEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RateCache) Get(pair entity.CurrencyPair) (float64, bool) {
	c.mu.RLock()
	e, ok := c.entries[pair]
	c.mu.RUnlock()

	if !ok || !c.fresh(e) {
		return 0, false
	}
	return e.rate, true
}

func (c *RateCache) Set(pair entity.CurrencyPair, rate float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[pair] = rateEntry{
		rate:      rate,
		fetchedAt: c.now(),
	}
}

// Sweep drops stale entries and returns how many were removed.
func (c *RateCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for pair, e := range c.entries {
		if !c.fresh(e) {
			delete(c.entries, pair)
			removed++
		}
	}
	return removed
}

func (c *RateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *RateCache) TTL() time.Duration {
	return c.ttl
}

func (c *RateCache) fresh(e rateEntry) bool {
	return c.now().Sub(e.fetchedAt) < c.ttl
}
