package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"wavy/pkg/models"
)

// RedisStore implements Store using Redis. Keys carry no Redis expiry so
// stale entries remain readable for the degraded path.
type RedisStore struct {
	client redis.UniversalClient
	logger *zap.Logger
	prefix string
	ttl    time.Duration
	clock  Clock
	stats  counters
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new instance of RedisStore
func NewRedisStore(client redis.UniversalClient, config *Config, logger *zap.Logger, opts ...Option) *RedisStore {
	config = normalizeConfig(config)
	o := applyOptions(opts)

	prefix := config.KeyPrefix
	if prefix == "" {
		prefix = DefaultConfig().KeyPrefix
	}

	return &RedisStore{
		client: client,
		logger: logger,
		prefix: prefix,
		ttl:    config.TTL,
		clock:  o.clock,
	}
}

func (rs *RedisStore) redisKey(key string) string {
	return rs.prefix + ":" + key
}

// Get retrieves an entry from Redis
func (rs *RedisStore) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	data, err := rs.client.Get(ctx, rs.redisKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			rs.logger.Warn("failed to get cache entry", zap.Error(err), zap.String("key", key))
		}
		rs.stats.misses.Add(1)
		return nil, false
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		rs.logger.Warn("failed to unmarshal cache entry", zap.Error(err), zap.String("key", key))
		rs.stats.misses.Add(1)
		return nil, false
	}

	rs.stats.hits.Add(1)
	rs.logger.Debug("cache entry retrieved", zap.String("key", key), zap.Time("stored_at", entry.StoredAt))
	return &entry, true
}

// Put stores an entry in Redis
func (rs *RedisStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	entry := models.NewCacheEntry(key, value, rs.clock())

	data, err := json.Marshal(entry)
	if err != nil {
		rs.logger.Error("failed to marshal cache entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	if err := rs.client.Set(ctx, rs.redisKey(key), data, 0).Err(); err != nil {
		rs.logger.Error("failed to set cache entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set cache entry: %w", err)
	}

	rs.stats.puts.Add(1)
	rs.logger.Debug("cache entry stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// IsFresh reports whether key is present and within the TTL
func (rs *RedisStore) IsFresh(ctx context.Context, key string) bool {
	entry, ok := rs.Get(ctx, key)
	return ok && entry.IsFresh(rs.clock(), rs.ttl)
}

// TTL returns the freshness window
func (rs *RedisStore) TTL() time.Duration { return rs.ttl }

// Now returns the store clock reading
func (rs *RedisStore) Now() time.Time { return rs.clock() }

// Stats returns lookup counters
func (rs *RedisStore) Stats() Stats { return rs.stats.snapshot() }

// Ping checks the Redis connection
func (rs *RedisStore) Ping(ctx context.Context) error {
	if err := rs.client.Ping(ctx).Err(); err != nil {
		rs.logger.Error("ping failed", zap.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	return nil
}
