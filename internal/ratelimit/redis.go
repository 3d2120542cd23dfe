package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisLimiter keeps the sliding window in a sorted set per key so several
// gateway instances share one budget. Scores and members are nanosecond
// timestamps.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewRedisLimiter(client *redis.Client, cfg Config) *RedisLimiter {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 10
	}
	if cfg.Window == 0 {
		cfg.Window = time.Hour
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &RedisLimiter{
		client: client,
		max:    cfg.MaxRequests,
		window: cfg.Window,
		logger: cfg.Logger,
		now:    cfg.Now,
	}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("ratelimit:%s", key)
	now := rl.now()
	cutoff := now.Add(-rl.window).UnixNano()

	if err := rl.client.ZRemRangeByScore(ctx, redisKey, "-inf",
		strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return Decision{}, fmt.Errorf("failed to trim rate limit window: %w", err)
	}

	count, err := rl.client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to count rate limit window: %w", err)
	}

	if int(count) >= rl.max {
		oldest, err := rl.client.ZRangeWithScores(ctx, redisKey, 0, 0).Result()
		if err != nil {
			return Decision{}, fmt.Errorf("failed to read oldest window entry: %w", err)
		}
		retryAfter := time.Second
		if len(oldest) > 0 {
			at := time.Unix(0, int64(oldest[0].Score)).Add(rl.window)
			if d := at.Sub(now); d > 0 {
				retryAfter = d
			}
		}
		rl.logger.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Duration("retry_after", retryAfter),
		)
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	stamp := now.UnixNano()
	pipe := rl.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(stamp),
		Member: strconv.FormatInt(stamp, 10),
	})
	pipe.Expire(ctx, redisKey, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to record request: %w", err)
	}

	return Decision{Allowed: true, Remaining: rl.max - int(count) - 1}, nil
}
