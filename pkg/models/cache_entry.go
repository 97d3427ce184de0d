package models

import (
	"encoding/json"
	"time"
)

// CacheEntry represents a payload stored in the metadata cache
type CacheEntry struct {
	Key      string          `json:"key"`
	Value    json.RawMessage `json:"value"`
	StoredAt time.Time       `json:"stored_at"`
}

// NewCacheEntry creates a new cache entry stamped with now
func NewCacheEntry(key string, value json.RawMessage, now time.Time) *CacheEntry {
	return &CacheEntry{
		Key:      key,
		Value:    value,
		StoredAt: now,
	}
}

// Age returns how long ago the entry was stored
func (ce *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(ce.StoredAt)
}

// IsFresh reports whether the entry is younger than ttl
func (ce *CacheEntry) IsFresh(now time.Time, ttl time.Duration) bool {
	return ce.Age(now) < ttl
}

// Freshness tells callers where a payload came from
type Freshness string

const (
	// FreshnessCached means a fresh cache entry answered without a network call
	FreshnessCached Freshness = "cached"
	// FreshnessNetwork means the payload was fetched from upstream just now
	FreshnessNetwork Freshness = "network"
	// FreshnessStale means upstream failed and an expired entry was served
	FreshnessStale Freshness = "stale"
)

// Degraded reports whether the payload is a fallback
func (f Freshness) Degraded() bool {
	return f == FreshnessStale
}
