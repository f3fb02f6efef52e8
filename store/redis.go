package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each key as a Redis string.
// Keys are namespaced as "{prefix}:{namespace}:{key}".
type RedisStore struct {
	client    *redis.Client
	prefix    string
	namespace string
}

// NewRedisStore wraps an existing client. Empty prefix and namespace fall
// back to "kv" and DefaultNamespace.
func NewRedisStore(client *redis.Client, prefix, namespace string) *RedisStore {
	if prefix == "" {
		prefix = "kv"
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisStore{client: client, prefix: prefix, namespace: namespace}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, namespace string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, "", namespace), nil
}

func (r *RedisStore) kvKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, r.namespace, key)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.kvKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		return r.client.Del(ctx, r.kvKey(key)).Err()
	}
	return r.client.Set(ctx, r.kvKey(key), value, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
