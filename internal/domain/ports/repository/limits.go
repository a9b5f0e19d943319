package repository

import (
	"context"
	"time"
)

// RateLimiter is a fixed-window counter. When the limit is exceeded Allow
// returns false plus how long the caller should wait before retrying.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ok bool, retryAfter time.Duration, err error)
}

// CooldownStore gates expensive operations (new provider charges) with a long
// per-user cooldown.
type CooldownStore interface {
	// Remaining returns how much of the cooldown is left; zero means clear.
	Remaining(ctx context.Context, key string) (time.Duration, error)
	Arm(ctx context.Context, key string, ttl time.Duration) error
}
