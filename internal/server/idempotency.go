package server

import (
	"sync"
	"time"

	"github.com/nana-intelligence/agent-juliette/internal/pipeline"
)

// DefaultCacheTTL is how long processed submissions are remembered. Tally
// redeliveries happen within minutes; an hour gives comfortable margin.
const DefaultCacheTTL = time.Hour

type cacheEntry struct {
	result    *pipeline.Result
	expiresAt time.Time
}

// IdempotencyCache deduplicates webhook deliveries by response ID so a
// redelivered submission never produces a second quote.
type IdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	// now is injectable for tests.
	now func() time.Time
}

// NewIdempotencyCache creates a cache with the given TTL; zero or negative
// uses DefaultCacheTTL.
func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &IdempotencyCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for a response ID, if present and fresh.
func (c *IdempotencyCache) Get(responseID string) (*pipeline.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()

	entry, ok := c.entries[responseID]
	if !ok {
		return nil, false
	}
	return entry.result, true
}

// Put stores a pipeline result under its response ID.
func (c *IdempotencyCache) Put(responseID string, result *pipeline.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()

	c.entries[responseID] = cacheEntry{
		result:    result,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Status describes the cache for the diagnostics endpoint.
type CacheStatus struct {
	Entries int    `json:"entries"`
	TTL     string `json:"ttl"`
}

// Status returns current cache statistics.
func (c *IdempotencyCache) Status() CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.purgeLocked()

	return CacheStatus{
		Entries: len(c.entries),
		TTL:     c.ttl.String(),
	}
}

func (c *IdempotencyCache) purgeLocked() {
	now := c.now()
	for id, entry := range c.entries {
		if entry.expiresAt.Before(now) {
			delete(c.entries, id)
		}
	}
}
