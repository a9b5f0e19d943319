// File: internal/infra/redis/rate_limiter.go
package redis

import (
	"context"
	"time"

	"guildahub/internal/domain/ports/repository"
)

var _ repository.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: INCR per key, EXPIRE on the first
// hit, deny once the count passes the limit.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, 0, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, 0, err
		}
	}

	if count > int64(limit) {
		retryAfter, err := r.client.TTL(ctx, key)
		if err != nil || retryAfter <= 0 {
			retryAfter = window
		}
		return false, retryAfter, nil
	}

	return true, 0, nil
}
