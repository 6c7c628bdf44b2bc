package service

import (
	"testing"
	"time"

	"breakout-scanner/internal/dto"

	"github.com/stretchr/testify/assert"
)

func scanResult(symbol string) *dto.ScanResult {
	return &dto.ScanResult{
		Symbol:    symbol,
		ScannedAt: time.Now(),
	}
}

func TestResultCache_SetGet(t *testing.T) {
	cache := NewResultCache(time.Minute, time.Minute, 10)

	cache.Set("BBCA", 365, scanResult("BBCA"))

	got, found := cache.Get("BBCA", 365)
	assert.True(t, found)
	assert.Equal(t, "BBCA", got.Symbol)

	_, found = cache.Get("BBCA", 730)
	assert.False(t, found, "lookback window is part of the key")

	_, found = cache.Get("BBRI", 365)
	assert.False(t, found)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	cache := NewResultCache(20*time.Millisecond, time.Minute, 10)

	cache.Set("BBCA", 365, scanResult("BBCA"))
	time.Sleep(40 * time.Millisecond)

	_, found := cache.Get("BBCA", 365)
	assert.False(t, found)
}

func TestResultCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewResultCache(time.Minute, time.Minute, 2)

	cache.Set("AAAA", 365, scanResult("AAAA"))
	time.Sleep(5 * time.Millisecond)
	cache.Set("BBBB", 365, scanResult("BBBB"))
	time.Sleep(5 * time.Millisecond)

	// Touch AAAA so BBBB becomes the eviction candidate.
	_, found := cache.Get("AAAA", 365)
	assert.True(t, found)
	time.Sleep(5 * time.Millisecond)

	cache.Set("CCCC", 365, scanResult("CCCC"))

	assert.Equal(t, 2, cache.Len())
	_, found = cache.Get("AAAA", 365)
	assert.True(t, found)
	_, found = cache.Get("BBBB", 365)
	assert.False(t, found)
	_, found = cache.Get("CCCC", 365)
	assert.True(t, found)
}

func TestResultCache_OverwriteDoesNotEvict(t *testing.T) {
	cache := NewResultCache(time.Minute, time.Minute, 2)

	cache.Set("AAAA", 365, scanResult("AAAA"))
	cache.Set("BBBB", 365, scanResult("BBBB"))
	cache.Set("AAAA", 365, scanResult("AAAA"))

	assert.Equal(t, 2, cache.Len())
	_, found := cache.Get("BBBB", 365)
	assert.True(t, found)
}

func TestResultCache_Delete(t *testing.T) {
	cache := NewResultCache(time.Minute, time.Minute, 10)

	cache.Set("AAAA", 365, scanResult("AAAA"))
	cache.Delete("AAAA", 365)

	_, found := cache.Get("AAAA", 365)
	assert.False(t, found)
	assert.Equal(t, 0, cache.Len())
}
