package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisSlots shares slots through redis; ttl of zero keeps them forever.
type RedisSlots struct {
	client redisv9.UniversalClient
	ttl    time.Duration
}

func NewRedisSlots(client redisv9.UniversalClient, ttl time.Duration) *RedisSlots {
	return &RedisSlots{client: client, ttl: ttl}
}

func (r *RedisSlots) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get slot failed: %w", err)
	}
	return raw, true, nil
}

func (r *RedisSlots) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set slot failed: %w", err)
	}
	return nil
}

func (r *RedisSlots) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete slot failed: %w", err)
	}
	return nil
}
