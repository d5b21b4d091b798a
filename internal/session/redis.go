package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis key layout: session:{account_id}:{key}
const redisKeyFormat = "session:%s:%s"

// RedisStore persists session state in Redis with a per-key TTL so abandoned
// checkout state ages out on its own.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{Addr: addr}),
		ttl: TTLSession,
	}
}

func (s *RedisStore) Get(ctx context.Context, accountID, key string) (string, error) {
	v, err := s.rdb.Get(ctx, fmt.Sprintf(redisKeyFormat, accountID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session get: %w", err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, accountID, key, value string) error {
	if err := s.rdb.Set(ctx, fmt.Sprintf(redisKeyFormat, accountID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, accountID, key string) error {
	if err := s.rdb.Del(ctx, fmt.Sprintf(redisKeyFormat, accountID, key)).Err(); err != nil {
		return fmt.Errorf("session remove: %w", err)
	}
	return nil
}

// Ping verifies connectivity at startup.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
