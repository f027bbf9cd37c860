package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "labchem:session:"

var _ fiber.Storage = (*RedisStorage)(nil)

// RedisStorage is a fiber.Storage over go-redis. Session expiry becomes the key TTL.
type RedisStorage struct {
	rdb     *redis.Client
	timeout time.Duration
}

// NewRedisStorage wraps a connected client.
func NewRedisStorage(rdb *redis.Client) *RedisStorage {
	return &RedisStorage{rdb: rdb, timeout: 5 * time.Second}
}

func (r *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns nil without error for unknown keys, as fiber expects.
func (r *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	data, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.rdb.Set(ctx, redisKeyPrefix+key, val, exp).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	if err := r.rdb.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Reset removes every session key.
func (r *RedisStorage) Reset() error {
	ctx, cancel := r.ctx()
	defer cancel()

	iter := r.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to reset sessions: %w", err)
		}
	}
	return iter.Err()
}

func (r *RedisStorage) Close() error {
	return r.rdb.Close()
}
