package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store with one Redis hash per browser.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the Redis server at url.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func sessionKey(browserID string) string {
	return fmt.Sprintf("portal:session:%s", browserID)
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// ReplaceEntries rewrites the browser hash inside MULTI/EXEC.
func (s *RedisStore) ReplaceEntries(ctx context.Context, browserID string, entries map[string]string) error {
	key := sessionKey(browserID)
	values := make(map[string]interface{}, len(entries))
	for k, v := range entries {
		values[k] = v
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.HSet(ctx, key, values)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	return err
}

// DeleteEntries removes the browser hash.
func (s *RedisStore) DeleteEntries(ctx context.Context, browserID string) error {
	return s.client.Del(ctx, sessionKey(browserID)).Err()
}

// GetEntries returns the browser hash.
func (s *RedisStore) GetEntries(ctx context.Context, browserID string) (map[string]string, error) {
	return s.client.HGetAll(ctx, sessionKey(browserID)).Result()
}

// DeleteExpired is a no-op; Redis expires hashes through their TTL.
func (s *RedisStore) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
