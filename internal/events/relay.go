package events

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis channel events are relayed to
const DefaultChannel = "wavy:collection-changed"

// RedisRelay forwards bus events to a Redis pub/sub channel so that other
// service instances can observe them
type RedisRelay struct {
	client  redis.UniversalClient
	channel string
	logger  *zap.Logger
}

// NewRedisRelay creates a relay publishing to channel
func NewRedisRelay(client redis.UniversalClient, channel string, logger *zap.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel, logger: logger}
}

// Run forwards events from sub until ctx is done or sub is closed
func (r *RedisRelay) Run(ctx context.Context, sub *Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			r.forward(ctx, ev)
		}
	}
}

func (r *RedisRelay) forward(ctx context.Context, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		r.logger.Warn("failed to encode event", zap.Error(err))
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		r.logger.Warn("failed to relay event", zap.Error(err), zap.String("channel", r.channel))
	}
}
