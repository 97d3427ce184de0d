package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"wavy/pkg/models"
)

// MemoryStore keeps entries in process memory. With MaxEntries set the least
// recently used entries are evicted; otherwise growth is unbounded.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.CacheEntry
	bounded *lru.Cache[string, *models.CacheEntry]

	ttl   time.Duration
	clock Clock
	stats counters
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a memory store
func NewMemoryStore(config *Config, opts ...Option) (*MemoryStore, error) {
	config = normalizeConfig(config)
	o := applyOptions(opts)

	s := &MemoryStore{
		ttl:   config.TTL,
		clock: o.clock,
	}

	if config.MaxEntries > 0 {
		bounded, err := lru.New[string, *models.CacheEntry](config.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create lru cache: %w", err)
		}
		s.bounded = bounded
	} else {
		s.entries = make(map[string]*models.CacheEntry)
	}

	return s, nil
}

// Get returns the entry for key
func (s *MemoryStore) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	var (
		entry *models.CacheEntry
		ok    bool
	)
	if s.bounded != nil {
		entry, ok = s.bounded.Get(key)
	} else {
		s.mu.RLock()
		entry, ok = s.entries[key]
		s.mu.RUnlock()
	}

	if !ok {
		s.stats.misses.Add(1)
		return nil, false
	}
	s.stats.hits.Add(1)

	cp := *entry
	return &cp, true
}

// Put stores value under key
func (s *MemoryStore) Put(_ context.Context, key string, value json.RawMessage) error {
	entry := models.NewCacheEntry(key, append(json.RawMessage(nil), value...), s.clock())

	if s.bounded != nil {
		s.bounded.Add(key, entry)
	} else {
		s.mu.Lock()
		s.entries[key] = entry
		s.mu.Unlock()
	}

	s.stats.puts.Add(1)
	return nil
}

// IsFresh reports whether key is present and within the TTL
func (s *MemoryStore) IsFresh(ctx context.Context, key string) bool {
	entry, ok := s.Get(ctx, key)
	return ok && entry.IsFresh(s.clock(), s.ttl)
}

// TTL returns the freshness window
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

// Now returns the store clock reading
func (s *MemoryStore) Now() time.Time { return s.clock() }

// Stats returns lookup counters
func (s *MemoryStore) Stats() Stats { return s.stats.snapshot() }

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	if s.bounded != nil {
		return s.bounded.Len()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
