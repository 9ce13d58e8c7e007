package cache_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepaucksharma/mcp-server-newrelic/pkg/cache"
)

func TestLRU_SetGet(t *testing.T) {
	c := cache.New(10, 0)

	c.Set("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(2, 0)

	c.Set("a", "1")
	c.Set("b", "2")
	// touch "a" so "b" becomes the least recently used entry.
	c.Get("a")
	c.Set("c", "3")

	_, ok := c.Get("b")
	assert.False(t, ok, "b should have been evicted as the least recently used entry")

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := cache.New(10, 0)
	c.SetWithTTL("a", "1", 10*time.Millisecond)

	_, ok := c.Get("a")
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok)
}

func TestLRU_DefaultTTLAppliesToPlainSet(t *testing.T) {
	c := cache.New(10, 10*time.Millisecond)
	c.Set("a", "1")
	time.Sleep(20 * time.Millisecond)
	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestLRU_DeleteAndClear(t *testing.T) {
	c := cache.New(10, 0)
	c.Set("a", "1")
	c.Delete("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("b", "2")
	c.Set("c", "3")
	c.Clear()
	assert.Equal(t, 0, c.Len())
}

func TestLRU_StatsHitRate(t *testing.T) {
	c := cache.New(10, 0)
	c.Set("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
}

func TestLRU_HitRateWithNoTraffic(t *testing.T) {
	c := cache.New(10, 0)
	assert.Equal(t, 0.0, c.Stats().HitRate())
}

func TestLRU_MinimumCapacityIsOne(t *testing.T) {
	c := cache.New(0, 0)
	c.Set("a", "1")
	c.Set("b", "2")
	assert.Equal(t, 1, c.Len())
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	c := cache.New(100, 0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := "k"
			c.Set(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 100)
}
