package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	redisclient "github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/redis"
)

// RedisRateLimiter implements a fixed-window limiter with INCR and EXPIRE,
// shared by every API instance.
type RedisRateLimiter struct {
	client *redisclient.Client
	prefix string
}

// NewRedisRateLimiter creates a limiter storing counters under prefix.
func NewRedisRateLimiter(client *redisclient.Client, prefix string) providers.RateLimiter {
	return &RedisRateLimiter{client: client, prefix: prefix}
}

// Allow increments the window counter of key.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := l.prefix + key
	count, err := l.client.Client().Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if count == 1 {
		if err := l.client.Client().Expire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate window: %w", err)
		}
	}
	return count <= int64(limit), nil
}
