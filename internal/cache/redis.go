// Package cache invalidates catalog entries held in Redis by read-side
// consumers.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Connect accepts either a redis:// URL or a bare host:port.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

type RedisInvalidator struct {
	client redis.Cmdable
}

func NewRedisInvalidator(client redis.Cmdable) *RedisInvalidator {
	return &RedisInvalidator{client: client}
}

func (i *RedisInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := i.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", strings.Join(keys, ","), err)
	}
	return nil
}
