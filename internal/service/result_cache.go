package service

import (
	"fmt"
	"time"

	"breakout-scanner/internal/dto"

	gocache "github.com/patrickmn/go-cache"
)

// cachedResult is the stored record. LastAccessedAt drives LRU eviction;
// it is only touched from the orchestrator's control loop, which is the
// cache's sole writer.
type cachedResult struct {
	Payload        *dto.ScanResult
	StoredAt       time.Time
	LastAccessedAt time.Time
}

// ResultCache is a bounded, time-expiring, least-recently-used store of
// scan results keyed by (symbol, lookback window). Expiry comes from
// go-cache; the entry bound is enforced on insert by evicting the record
// with the oldest access time.
type ResultCache struct {
	store      *gocache.Cache
	maxEntries int
}

func NewResultCache(ttl, cleanupInterval time.Duration, maxEntries int) *ResultCache {
	return &ResultCache{
		store:      gocache.New(ttl, cleanupInterval),
		maxEntries: maxEntries,
	}
}

func resultKey(symbol string, lookbackDays int) string {
	return fmt.Sprintf("%s:%d", symbol, lookbackDays)
}

func (c *ResultCache) Get(symbol string, lookbackDays int) (*dto.ScanResult, bool) {
	val, found := c.store.Get(resultKey(symbol, lookbackDays))
	if !found {
		return nil, false
	}
	record, ok := val.(*cachedResult)
	if !ok {
		return nil, false
	}
	record.LastAccessedAt = time.Now()
	return record.Payload, true
}

func (c *ResultCache) Set(symbol string, lookbackDays int, payload *dto.ScanResult) {
	key := resultKey(symbol, lookbackDays)
	if _, exists := c.store.Get(key); !exists && c.store.ItemCount() >= c.maxEntries {
		c.evictLeastRecentlyUsed()
	}

	now := time.Now()
	c.store.SetDefault(key, &cachedResult{
		Payload:        payload,
		StoredAt:       now,
		LastAccessedAt: now,
	})
}

func (c *ResultCache) Delete(symbol string, lookbackDays int) {
	c.store.Delete(resultKey(symbol, lookbackDays))
}

func (c *ResultCache) Len() int {
	return c.store.ItemCount()
}

func (c *ResultCache) evictLeastRecentlyUsed() {
	var oldestKey string
	var oldestAt time.Time
	for key, item := range c.store.Items() {
		record, ok := item.Object.(*cachedResult)
		if !ok {
			continue
		}
		if oldestKey == "" || record.LastAccessedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = record.LastAccessedAt
		}
	}
	if oldestKey != "" {
		c.store.Delete(oldestKey)
	}
}
