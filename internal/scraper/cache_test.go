package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCacheWriteOnce tests that a key is written at most once per run.
func TestCacheWriteOnce(t *testing.T) {
	cache := NewCache()

	_, ok := cache.get(cacheKeyGold)
	assert.False(t, ok)

	cache.set(cacheKeyGold, 7956.0)
	cache.set(cacheKeyGold, 1.0) // ignored

	v, ok := cache.get(cacheKeyGold)
	require.True(t, ok)
	assert.Equal(t, 7956.0, v)
}

// TestCacheKeysIndependent tests that source keys do not collide.
func TestCacheKeysIndependent(t *testing.T) {
	cache := NewCache()
	cache.set(cacheKeyGold, 7956.0)

	_, ok := cache.get(cacheKeyListing)
	assert.False(t, ok)
}

// TestFreshCachePerRun tests that a new cache starts empty.
func TestFreshCachePerRun(t *testing.T) {
	cache := NewCache()
	cache.set(cacheKeyListing, "x")

	fresh := NewCache()
	_, ok := fresh.get(cacheKeyListing)
	assert.False(t, ok)
}
