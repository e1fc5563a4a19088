package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgredis "github.com/angelmondragon/storefront/pkg/redis"
)

type redisRecords interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RecordKey(session, name string) string
	Ping(ctx context.Context) error
	Close() error
}

// RedisBackend stores each record as a plain redis string without expiry.
type RedisBackend struct {
	client redisRecords
}

// NewRedisBackend wraps a connected redis client.
func NewRedisBackend(client *pkgredis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, r.client.RecordKey(namespace, key))
	if err != nil {
		if errors.Is(err, pkgredis.ErrNil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (r *RedisBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := r.client.Set(ctx, r.client.RecordKey(namespace, key), string(value), 0); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.Del(ctx, r.client.RecordKey(namespace, key)); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}

func (r *RedisBackend) Close() error {
	return r.client.Close()
}
