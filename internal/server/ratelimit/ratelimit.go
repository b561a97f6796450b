// Package ratelimit bounds per-client request rates with token buckets, so a
// misbehaving webhook sender cannot drain the LLM quota.
package ratelimit

import (
	"sync"
	"time"
)

// bucketIdleTTL is how long an untouched bucket survives eviction sweeps.
const bucketIdleTTL = time.Hour

// Info reports the outcome of one rate decision, for response headers.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// bucket refills continuously at refillPerSec up to capacity.
type bucket struct {
	capacity     float64
	refillPerSec float64
	tokens       float64
	refilledAt   time.Time
	accessedAt   time.Time
}

func newBucket(capacity int, refillPerSec float64, now time.Time) *bucket {
	return &bucket{
		capacity:     float64(capacity),
		refillPerSec: refillPerSec,
		tokens:       float64(capacity),
		refilledAt:   now,
		accessedAt:   now,
	}
}

func (b *bucket) refill(now time.Time) {
	b.tokens += now.Sub(b.refilledAt).Seconds() * b.refillPerSec
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.refilledAt = now
}

// take consumes one token if available.
func (b *bucket) take(now time.Time) bool {
	b.refill(now)
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// resetAt estimates when the bucket is full again.
func (b *bucket) resetAt(now time.Time) time.Time {
	missing := b.capacity - b.tokens
	if missing <= 0 {
		return now
	}
	return now.Add(time.Duration(missing / b.refillPerSec * float64(time.Second)))
}

// Limiter hands out tokens from one bucket per client, method, and path.
// Idle buckets are evicted in the background so the map stays bounded.
type Limiter struct {
	mu      sync.Mutex
	cfg     *Config
	buckets map[string]*bucket

	stopOnce sync.Once
	stop     chan struct{}
}

// NewLimiter creates a Limiter. A nil config falls back to a permissive
// default limit.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = &Config{
			Enabled:       true,
			DefaultLimit:  1000,
			DefaultWindow: time.Minute,
		}
	}

	l := &Limiter{
		cfg:     cfg,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.evictLoop(cfg.CleanupInterval)
	}
	return l
}

// Allow reports whether one request from clientID to the endpoint may
// proceed. Whitelisted clients and unlimited endpoints always pass with a
// zero Limit, which suppresses rate headers upstream.
func (l *Limiter) Allow(clientID, endpoint, method string) (bool, Info) {
	if !l.cfg.Enabled || l.cfg.Whitelist[clientID] {
		return true, Info{Allowed: true}
	}
	if l.cfg.Blacklist[clientID] {
		return false, Info{}
	}

	rule := MatchEndpoint(endpoint, method, l.cfg.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{
			Limit:  l.cfg.DefaultLimit,
			Window: l.cfg.DefaultWindow,
			Burst:  l.cfg.DefaultLimit,
		}
	}
	if rule.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := time.Now()

	l.mu.Lock()
	key := clientID + " " + method + " " + endpoint
	b, ok := l.buckets[key]
	if !ok {
		capacity := rule.Burst
		if capacity <= 0 {
			capacity = rule.Limit
		}
		b = newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds(), now)
		l.buckets[key] = b
	}
	b.accessedAt = now

	allowed := b.take(now)
	remaining := int(b.tokens)
	reset := b.resetAt(now)
	l.mu.Unlock()

	info := Info{
		Allowed:   allowed,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetTime: reset,
	}
	if !allowed {
		if wait := time.Until(reset); wait > 0 {
			info.RetryAfter = wait
		}
	}
	return allowed, info
}

// Stop ends the background eviction goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) evictLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.evictIdle(time.Now().Add(-bucketIdleTTL))
		case <-l.stop:
			return
		}
	}
}

func (l *Limiter) evictIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if b.accessedAt.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
