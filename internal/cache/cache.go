// Package cache stores JSON-encoded backend payloads that do not change
// once written, such as finalized assessment results.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMiss is returned by Get when the key is absent or expired.
	ErrMiss = errors.New("cache miss")

	// ErrUnavailable wraps failures of the cache itself (connection,
	// encoding). Errors returned by a LoadFunc are passed through unwrapped.
	ErrUnavailable = errors.New("cache unavailable")
)

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, fmt.Errorf(format, args...))
}

// Cache is a TTL key/value store of JSON values.
type Cache interface {
	// Get decodes the value at key into dst. Returns ErrMiss when absent.
	Get(ctx context.Context, key string, dst any) error

	// Set stores v at key for roughly ttl. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, v any, ttl time.Duration) error

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	Close() error
}

// LoadFunc produces the value for a missing key.
type LoadFunc func(ctx context.Context) (any, error)

// Loader is implemented by caches that coalesce concurrent misses.
type Loader interface {
	GetOrLoad(ctx context.Context, key string, dst any, ttl time.Duration, load LoadFunc) error
}

// GetOrLoad reads key into dst, calling load on a miss and storing its
// result. Write failures after a successful load are ignored.
func GetOrLoad(ctx context.Context, c Cache, key string, dst any, ttl time.Duration, load LoadFunc) error {
	if l, ok := c.(Loader); ok {
		return l.GetOrLoad(ctx, key, dst, ttl, load)
	}

	err := c.Get(ctx, key, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrMiss) {
		return err
	}

	v, err := load(ctx)
	if err != nil {
		return err
	}
	_ = c.Set(ctx, key, v, ttl)

	raw, err := json.Marshal(v)
	if err != nil {
		return unavailable("encode %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return unavailable("decode %s: %w", key, err)
	}
	return nil
}
