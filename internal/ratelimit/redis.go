// Package ratelimit throttles actions with fixed windows kept in Redis.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/credential-server/internal/model"
)

const keyPrefix = "ratelimit:"

// redisAPI is the subset of the Redis client used by the limiter.
type redisAPI interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

var _ model.Limiter = (*FixedWindow)(nil)

// FixedWindow allows limit calls per key in each window.
type FixedWindow struct {
	client redisAPI
	limit  int64
	window time.Duration
}

func NewFixedWindow(client *redis.Client, limit int64, window time.Duration) *FixedWindow {
	return newFixedWindow(client, limit, window)
}

func newFixedWindow(client redisAPI, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Allow counts the call and reports whether it is within the limit.
func (l *FixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	key = keyPrefix + key

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}

	return count <= l.limit, nil
}

// Unlimited allows every call.
type Unlimited struct{}

func (Unlimited) Allow(context.Context, string) (bool, error) {
	return true, nil
}
