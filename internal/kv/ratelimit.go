package kv

import (
	"context"
	"time"
)

// RateLimiter is a fixed-window counter over a Store. Allow fails open: a
// store error never blocks the request.
type RateLimiter struct {
	store  Store
	limit  int64
	window time.Duration
}

func NewRateLimiter(store Store, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{store: store, limit: int64(limit), window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) bool {
	n, err := l.store.Incr(ctx, "rl:"+key, l.window)
	if err != nil {
		return true
	}
	return n <= l.limit
}
