// Package ratelimit limits question submissions.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter decides whether one more request for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Counter is a single shared counter with a fixed ceiling per window.
// Keys are ignored; every caller draws from the same budget.
type Counter struct {
	mu       sync.Mutex
	ceiling  int
	window   time.Duration
	count    int
	windowAt time.Time
	now      func() time.Time
}

// NewCounter creates a shared fixed-window counter.
func NewCounter(ceiling int, window time.Duration) *Counter {
	return &Counter{ceiling: ceiling, window: window, now: time.Now}
}

// Allow counts the request and reports whether it is within the ceiling.
func (c *Counter) Allow(_ context.Context, _ string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if c.windowAt.IsZero() || (c.window > 0 && !now.Before(c.windowAt.Add(c.window))) {
		c.windowAt = now
		c.count = 0
	}
	c.count++
	return c.count <= c.ceiling, nil
}

// Reset starts a fresh window.
func (c *Counter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count = 0
	c.windowAt = time.Time{}
}

const keyPrefix = "ratelimit:questions:"

// SlidingWindow limits each key to ceiling requests in any trailing window,
// using one Redis sorted set per key scored by request time.
type SlidingWindow struct {
	client  *redis.Client
	ceiling int
	window  time.Duration
	now     func() time.Time
}

// NewSlidingWindow creates a Redis-backed sliding window limiter.
func NewSlidingWindow(client *redis.Client, ceiling int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{client: client, ceiling: ceiling, window: window, now: time.Now}
}

// Allow records the request and reports whether the key is within its ceiling.
// Rejected requests are not kept in the window.
func (s *SlidingWindow) Allow(ctx context.Context, key string) (bool, error) {
	now := s.now()
	redisKey := keyPrefix + key
	member := fmt.Sprintf("%d-%s", now.UnixNano(), uuid.NewString())
	floor := now.Add(-s.window).UnixNano()

	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("(%d", floor))
		pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
		card = pipe.ZCard(ctx, redisKey)
		pipe.Expire(ctx, redisKey, s.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("sliding window: %w", err)
	}
	if card.Val() <= int64(s.ceiling) {
		return true, nil
	}
	if err := s.client.ZRem(ctx, redisKey, member).Err(); err != nil {
		return false, fmt.Errorf("sliding window rollback: %w", err)
	}
	return false, nil
}
