package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// counterTTL keeps abandoned session counters from accumulating forever.
const counterTTL = 24 * time.Hour

// RedisCounter shares prompt counts across gateway instances.
type RedisCounter struct {
	client *redis.Client
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) Peek(ctx context.Context, sessionID string) (int, error) {
	val, err := c.client.Get(ctx, fmt.Sprintf("session:prompts:%s", sessionID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read prompt count: %w", err)
	}
	return val, nil
}

func (c *RedisCounter) Increment(ctx context.Context, sessionID string) (int, error) {
	key := fmt.Sprintf("session:prompts:%s", sessionID)
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, counterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment prompt count: %w", err)
	}
	return int(incr.Val()), nil
}
