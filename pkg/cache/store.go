package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a small JSON cache with namespace versioning. Invalidation bumps
// the namespace version, which orphans every key minted under the old one;
// orphans expire with their TTL. All operations degrade to misses on a nil
// client or a Redis failure.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Store. A nil client yields a disabled cache.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Key builds a versioned cache key for the namespace.
func (s *Store) Key(ctx context.Context, namespace, suffix string) string {
	var version int64
	if s.client != nil {
		if v, err := s.client.Get(ctx, namespace+":ver").Int64(); err == nil {
			version = v
		}
	}
	return fmt.Sprintf("%s:v%d:%s", namespace, version, suffix)
}

// Get unmarshals the cached value into dest, reporting whether it was found.
func (s *Store) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if s.client == nil {
		return false, nil
	}
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores the value under key with the configured TTL.
func (s *Store) Set(ctx context.Context, key string, value interface{}) error {
	if s.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, raw, s.ttl).Err()
}

// Invalidate bumps the namespace version, orphaning all keys under it.
func (s *Store) Invalidate(ctx context.Context, namespace string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, namespace+":ver").Err()
}
