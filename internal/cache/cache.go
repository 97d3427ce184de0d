// Package cache is the timestamped key-value store in front of the metadata
// provider. Entries are never expired by the store itself: staleness is a
// property judged against the TTL so that expired payloads stay available as
// a degraded fallback.
package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"wavy/pkg/models"
)

// DefaultTTL is the freshness window of a cached payload
const DefaultTTL = time.Hour

// Store defines the cache operations used by the metadata client
type Store interface {
	// Get returns the entry for key, fresh or stale. It never fails: backend
	// errors are logged and reported as absence.
	Get(ctx context.Context, key string) (*models.CacheEntry, bool)
	// Put stores value under key stamped with the current time, overwriting
	// any previous entry.
	Put(ctx context.Context, key string, value json.RawMessage) error
	// IsFresh reports whether key holds an entry younger than the TTL
	IsFresh(ctx context.Context, key string) bool
	// TTL returns the freshness window
	TTL() time.Duration
	// Now returns the store's clock reading
	Now() time.Time
	// Stats returns lookup counters
	Stats() Stats
}

// Config configuration for the cache
type Config struct {
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"` // 0 keeps every entry
	KeyPrefix  string        `mapstructure:"key_prefix"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TTL:        DefaultTTL,
		MaxEntries: 0,
		KeyPrefix:  "wavy:cache",
	}
}

// Stats holds cache counters
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Puts   int64 `json:"puts"`
}

// Clock returns the current time; tests replace it to move past the TTL
type Clock func() time.Time

// Option customises a store
type Option func(*options)

type options struct {
	clock Clock
}

// WithClock overrides time.Now
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func applyOptions(opts []Option) options {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func normalizeConfig(config *Config) *Config {
	if config == nil {
		return DefaultConfig()
	}
	c := *config
	if c.TTL <= 0 {
		c.TTL = DefaultTTL
	}
	return &c
}

type counters struct {
	hits   atomic.Int64
	misses atomic.Int64
	puts   atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Puts:   c.puts.Load(),
	}
}
