// Package kv provides the expiring key-value store behind the OTP ledger,
// the session store and the send-OTP rate limiter. The in-process backend
// keeps single-instance deployments dependency-free; the Redis backend makes
// multi-instance deployments share state.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or its TTL has elapsed.
var ErrNotFound = errors.New("kv: key not found")

type Store interface {
	// Get returns the value for key, or ErrNotFound if absent/expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any prior value. A zero ttl
	// means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// Incr atomically increments the counter at key, setting ttl on first
	// write. Used for rate limiting.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
