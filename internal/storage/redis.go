package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisConfig configuration for the shared Redis connection
type RedisConfig struct {
	Addresses    []string      `mapstructure:"addresses"`
	Password     string        `mapstructure:"password"`
	Database     int           `mapstructure:"database"`
	MaxRetries   int           `mapstructure:"max_retries"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// DefaultRedisConfig returns the default configuration
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addresses:    []string{"localhost:6379"},
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// NewRedisClient creates the Redis client and checks the connection
func NewRedisClient(ctx context.Context, config *RedisConfig) (redis.UniversalClient, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        config.Addresses,
		Password:     config.Password,
		DB:           config.Database,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisKV implements KV on top of Redis strings
type RedisKV struct {
	client redis.UniversalClient
	logger *zap.Logger
}

var _ KV = (*RedisKV)(nil)

// NewRedisKV wraps an existing client
func NewRedisKV(client redis.UniversalClient, logger *zap.Logger) *RedisKV {
	return &RedisKV{client: client, logger: logger}
}

// Get retrieves the raw value of key
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		r.logger.Error("failed to get key", zap.Error(err), zap.String("key", key))
		return nil, false, fmt.Errorf("failed to get key: %w", err)
	}
	return data, true, nil
}

// Set stores value without expiration
func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		r.logger.Error("failed to set key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set key: %w", err)
	}

	r.logger.Debug("key stored", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete removes key
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("failed to delete key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}
