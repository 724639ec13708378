package lockout

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const failureKeyPrefix = "lockout:login:"

// RedisStore shares failure counts across instances. Each key is a counter
// whose TTL is the lockout window, refreshed on every failure; the window
// is therefore "since the latest failure", a slightly stricter policy than
// the memory store's sliding window.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

func (s *RedisStore) RecordFailure(ctx context.Context, key string) (int, error) {
	k := failureKeyPrefix + key
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record login failure: %w", err)
	}
	return int(incr.Val()), nil
}

func (s *RedisStore) Failures(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, failureKeyPrefix+key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get login failures: %w", err)
	}
	return count, nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, failureKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("reset login failures: %w", err)
	}
	return nil
}
