package realtime

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes outbox events onto the Redis pub/sub fabric that
// every hub instance subscribes to.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.rdb.Publish(ctx, channel, payload).Err()
}
