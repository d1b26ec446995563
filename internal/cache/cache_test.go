package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/diamondstats/internal/cache"
)

func TestSetAndGet(t *testing.T) {
	c := cache.New(true)

	etag := c.Set("games:BOS197809070", []byte(`{"id":"BOS197809070"}`), time.Minute)
	assert.NotEmpty(t, etag)

	data, gotETag, ok := c.Get("games:BOS197809070")
	require.True(t, ok)
	assert.Equal(t, `{"id":"BOS197809070"}`, string(data))
	assert.Equal(t, etag, gotETag)

	_, _, ok = c.Get("games:unknown")
	assert.False(t, ok)
}

func TestExpiry(t *testing.T) {
	c := cache.New(true)
	c.Set("batches:1978", []byte("[]"), -time.Second)

	_, _, ok := c.Get("batches:1978")
	assert.False(t, ok)
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := cache.New(false)

	etag := c.Set("k", []byte("v"), time.Minute)
	assert.NotEmpty(t, etag, "ETag is still computed for conditional requests")

	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestETag(t *testing.T) {
	a := cache.ComputeETag([]byte("alpha"))
	b := cache.ComputeETag([]byte("beta"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, cache.ComputeETag([]byte("alpha")))

	assert.True(t, cache.CheckETagMatch(a, a))
	assert.True(t, cache.CheckETagMatch("*", a))
	assert.False(t, cache.CheckETagMatch("", a))
	assert.False(t, cache.CheckETagMatch(b, a))
}

func TestStats(t *testing.T) {
	c := cache.New(true)
	c.Set("live", []byte("1"), time.Minute)
	c.Set("stale", []byte("2"), -time.Second)

	stats := c.Stats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, 2, stats["total_keys"])
	assert.Equal(t, 1, stats["active_keys"])
	assert.Equal(t, 1, stats["expired_keys"])
}
