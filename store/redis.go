package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix prefixes the key of every blob.
const RedisKeyPrefix = "wisard:blob:"

// RedisStore keeps blobs as Redis string values.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis server at rawURL and pings it.
func NewRedisStore(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return NewRedisStoreWithClient(ctx, redis.NewClient(opts))
}

// NewRedisStoreWithClient wraps client and pings the server.
func NewRedisStoreWithClient(ctx context.Context, client *redis.Client) (*RedisStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) key(h Handle) string {
	return RedisKeyPrefix + h.String()
}

// Put implements the Store interface.
func (s *RedisStore) Put(ctx context.Context, data []byte) (Handle, error) {
	h := ComputeHandle(data)
	if err := s.client.SetNX(ctx, s.key(h), data, 0).Err(); err != nil {
		return h, fmt.Errorf("put blob: %w", err)
	}
	return h, nil
}

// Get implements the Store interface.
func (s *RedisStore) Get(ctx context.Context, h Handle) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(h)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	return data, nil
}

// Delete implements the Store interface.
func (s *RedisStore) Delete(ctx context.Context, h Handle) error {
	n, err := s.client.Del(ctx, s.key(h)).Result()
	if err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists implements the Store interface.
func (s *RedisStore) Exists(ctx context.Context, h Handle) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(h)).Result()
	if err != nil {
		return false, fmt.Errorf("exists blob: %w", err)
	}
	return n > 0, nil
}

// Close implements the Store interface.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
