package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis caches values as JSON strings under a key prefix.
type Redis struct {
	client *redis.Client
	prefix string
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

var _ Cache = (*Redis)(nil)

// NewRedis wraps an existing client. Keys are namespaced under prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// DialRedis connects using a redis:// URL and verifies the connection.
func DialRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedis(client, prefix), nil
}

func (r *Redis) Get(ctx context.Context, key string, dst any) error {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return unavailable("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return unavailable("decode cached %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return unavailable("encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, r.key(key), raw, r.ttlWithJitter(ttl)).Err(); err != nil {
		return unavailable("redis set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return unavailable("redis del: %w", err)
	}
	return nil
}

// GetOrLoad returns the cached value at key, or calls load once across
// concurrent callers, stores its result and decodes it into dst.
func (r *Redis) GetOrLoad(ctx context.Context, key string, dst any, ttl time.Duration, load LoadFunc) error {
	if err := r.Get(ctx, key, dst); err == nil {
		return nil
	} else if !errors.Is(err, ErrMiss) {
		return err
	}

	raw, err, _ := r.sf.Do(key, func() (any, error) {
		// Re-check in case another caller filled it.
		if b, err := r.client.Get(ctx, r.key(key)).Bytes(); err == nil {
			return b, nil
		}
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, unavailable("encode %s: %w", key, err)
		}
		_ = r.client.Set(ctx, r.key(key), b, r.ttlWithJitter(ttl)).Err()
		return b, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw.([]byte), dst); err != nil {
		return unavailable("decode %s: %w", key, err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

func (r *Redis) ttlWithJitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	jitterMax := int64(ttl) / 10
	r.mu.Lock()
	defer r.mu.Unlock()
	return ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
