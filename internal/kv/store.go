package kv

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when the backing store cannot be reached.
// Callers treat it as a dependency failure and abort before side effects.
var ErrUnavailable = errors.New("keyed store unavailable")

// Store is the narrow contract the engine needs from the keyed store:
// single-round-trip atomic primitives. Implementations must guarantee
// that each method is one atomic operation against the backing store,
// never a read-modify-write pair.
type Store interface {
	// IncrWithTTL atomically increments key and, when the increment
	// created the key, applies ttl. Returns the post-increment value.
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Incr atomically increments key without touching its expiry.
	Incr(ctx context.Context, key string) (int64, error)

	// SetNX sets key to value with ttl only if the key does not exist.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Get returns the value for key, or "" when absent.
	Get(ctx context.Context, key string) (string, error)
}
