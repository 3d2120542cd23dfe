package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// minClientIDLen guards against trivially guessable client-chosen ids.
const minClientIDLen = 16

// Resolve returns the client-supplied session id when it is long enough to
// trust, otherwise a fresh server-generated one. The resolved id is echoed in
// every response so clients can stick to it.
func Resolve(clientID string) string {
	id := strings.TrimSpace(clientID)
	if len(id) >= minClientIDLen {
		return id
	}
	return uuid.NewString()
}

// Counter tracks how many prompts a session has completed. Peek reads without
// mutating; Increment bumps after a successful exchange and returns the new
// total.
type Counter interface {
	Peek(ctx context.Context, sessionID string) (int, error)
	Increment(ctx context.Context, sessionID string) (int, error)
}

type count struct {
	n        int
	lastSeen time.Time
}

// MemoryCounter is the single-instance counter store. Sessions idle past
// counterTTL are swept so the map cannot grow without bound.
type MemoryCounter struct {
	mu     sync.Mutex
	counts map[string]count
	now    func() time.Time

	cleanupTicker *time.Ticker
	done          chan struct{}
}

func NewMemoryCounter() *MemoryCounter {
	c := &MemoryCounter{
		counts:        make(map[string]count),
		now:           time.Now,
		cleanupTicker: time.NewTicker(time.Hour),
		done:          make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *MemoryCounter) Peek(_ context.Context, sessionID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[sessionID].n, nil
}

func (c *MemoryCounter) Increment(_ context.Context, sessionID string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := c.counts[sessionID]
	entry.n++
	entry.lastSeen = c.now()
	c.counts[sessionID] = entry
	return entry.n, nil
}

func (c *MemoryCounter) cleanup() {
	for {
		select {
		case <-c.done:
			return
		case <-c.cleanupTicker.C:
		}

		cutoff := c.now().Add(-counterTTL)
		c.mu.Lock()
		for id, entry := range c.counts {
			if entry.lastSeen.Before(cutoff) {
				delete(c.counts, id)
			}
		}
		c.mu.Unlock()
	}
}

func (c *MemoryCounter) Stop() {
	c.cleanupTicker.Stop()
	close(c.done)
}
