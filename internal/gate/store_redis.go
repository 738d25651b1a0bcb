// internal/gate/store_redis.go
//
// Redis-backed counter store.
//
// The record is encoded as "<count> <expires_at>" in a plain string
// key.  The key's own TTL is set past the window end so abandoned
// addresses age out of Redis, but expiry decisions still come from
// the embedded expires_at, keeping both backends' semantics
// identical.  The Fetch/Store pair is deliberately not a Lua script;
// the non-atomic window is the documented approximation.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounterStore keeps window counters in Redis.
type RedisCounterStore struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCounterStore wraps a connected client.
func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb, prefix: "netmon:rl:"}
}

// Fetch implements CounterStore.
func (s *RedisCounterStore) Fetch(ctx context.Context, key string) (Counter, bool, error) {
	val, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return Counter{}, false, nil
	}
	if err != nil {
		return Counter{}, false, err
	}
	c, ok := counterFromReply(val)
	return c, ok, nil
}

// counterFromReply decodes a stored record, treating a corrupt value
// as absent so the next Store rewrites it.
func counterFromReply(val string) (Counter, bool) {
	c, err := decodeCounter(val)
	if err != nil {
		return Counter{}, false
	}
	return c, true
}

// Store implements CounterStore.
func (s *RedisCounterStore) Store(ctx context.Context, key string, c Counter) error {
	ttl := time.Until(time.Unix(c.ExpiresAt, 0)) + time.Minute
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return s.rdb.Set(ctx, s.prefix+key, encodeCounter(c), ttl).Err()
}

func encodeCounter(c Counter) string {
	return fmt.Sprintf("%d %d", c.Count, c.ExpiresAt)
}

func decodeCounter(val string) (Counter, error) {
	var c Counter
	if _, err := fmt.Sscanf(val, "%d %d", &c.Count, &c.ExpiresAt); err != nil {
		return Counter{}, err
	}
	return c, nil
}
