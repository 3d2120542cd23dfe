package ratelimit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Decision is the outcome of one admission check. RetryAfter is positive only
// on rejection and names when the oldest in-window request falls out.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects a request for a client key. Implementations must
// serialize updates per key so concurrent requests cannot lose timestamps.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type Config struct {
	MaxRequests int
	Window      time.Duration
	Logger      *zap.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

type bucket struct {
	mu     sync.Mutex
	stamps []time.Time
}

// MemoryLimiter is the default single-instance sliding-window limiter. Each
// bucket holds the timestamps inside the trailing window; entries expire
// lazily on read and a background sweep drops idle buckets.
type MemoryLimiter struct {
	mu      sync.RWMutex
	buckets map[string]*bucket

	max    int
	window time.Duration
	now    func() time.Time
	logger *zap.Logger

	cleanupTicker *time.Ticker
	done          chan struct{}
}

func NewMemoryLimiter(cfg Config) *MemoryLimiter {
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

	rl := &MemoryLimiter{
		buckets:       make(map[string]*bucket),
		max:           cfg.MaxRequests,
		window:        cfg.Window,
		now:           cfg.Now,
		logger:        cfg.Logger,
		cleanupTicker: time.NewTicker(5 * time.Minute),
		done:          make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	rl.mu.RLock()
	b, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		b, exists = rl.buckets[key]
		if !exists {
			b = &bucket{}
			rl.buckets[key] = b
		}
		rl.mu.Unlock()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)
	kept := b.stamps[:0]
	for _, s := range b.stamps {
		if s.After(cutoff) {
			kept = append(kept, s)
		}
	}
	b.stamps = kept

	if len(b.stamps) >= rl.max {
		retryAfter := b.stamps[0].Add(rl.window).Sub(now)
		if retryAfter <= 0 {
			retryAfter = time.Second
		}
		rl.logger.Warn("Rate limit exceeded",
			zap.String("key", key),
			zap.Duration("retry_after", retryAfter),
		)
		return Decision{Allowed: false, RetryAfter: retryAfter}, nil
	}

	b.stamps = append(b.stamps, now)
	return Decision{Allowed: true, Remaining: rl.max - len(b.stamps)}, nil
}

func (rl *MemoryLimiter) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case <-rl.cleanupTicker.C:
		}

		cutoff := rl.now().Add(-rl.window)
		rl.mu.Lock()
		for key, b := range rl.buckets {
			b.mu.Lock()
			idle := len(b.stamps) == 0 || !b.stamps[len(b.stamps)-1].After(cutoff)
			b.mu.Unlock()
			if idle {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *MemoryLimiter) Stop() {
	rl.cleanupTicker.Stop()
	close(rl.done)
}
