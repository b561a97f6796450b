package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nana-intelligence/agent-juliette/internal/pipeline"
)

func TestIdempotencyCache_GetPut(t *testing.T) {
	cache := NewIdempotencyCache(time.Hour)

	_, ok := cache.Get("resp_1")
	assert.False(t, ok)

	result := &pipeline.Result{Success: true, Reference: "DEV-20260401-AAAA1111"}
	cache.Put("resp_1", result)

	cached, ok := cache.Get("resp_1")
	require.True(t, ok)
	assert.Equal(t, "DEV-20260401-AAAA1111", cached.Reference)

	_, ok = cache.Get("resp_2")
	assert.False(t, ok)
}

func TestIdempotencyCache_EntriesExpire(t *testing.T) {
	cache := NewIdempotencyCache(time.Hour)

	current := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return current }

	cache.Put("resp_1", &pipeline.Result{Success: true})

	current = current.Add(59 * time.Minute)
	_, ok := cache.Get("resp_1")
	assert.True(t, ok, "entry should survive within the TTL")

	current = current.Add(2 * time.Minute)
	_, ok = cache.Get("resp_1")
	assert.False(t, ok, "entry should expire after the TTL")
	assert.Equal(t, 0, cache.Status().Entries)
}

func TestIdempotencyCache_DefaultTTL(t *testing.T) {
	cache := NewIdempotencyCache(0)
	assert.Equal(t, DefaultCacheTTL.String(), cache.Status().TTL)
}
