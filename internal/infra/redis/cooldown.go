// File: internal/infra/redis/cooldown.go
package redis

import (
	"context"
	"time"

	"guildahub/internal/domain/ports/repository"
)

var _ repository.CooldownStore = (*CooldownStore)(nil)

// CooldownStore keeps per-key cooldowns as plain TTL'd keys. Remaining reads
// the TTL; a missing key means no cooldown is active.
type CooldownStore struct {
	client RedisClient
}

func NewCooldownStore(client RedisClient) *CooldownStore {
	return &CooldownStore{client: client}
}

func (s *CooldownStore) Remaining(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key)
	if err != nil {
		return 0, err
	}
	// TTL returns negative durations for missing keys and keys without expiry.
	if ttl <= 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *CooldownStore) Arm(ctx context.Context, key string, ttl time.Duration) error {
	return s.client.Set(ctx, key, "1", ttl)
}
