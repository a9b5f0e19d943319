// File: internal/infra/redis/session_cache.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
)

var _ repository.SessionCache = (*SessionCache)(nil)

// SessionCache stores resolved session contexts as JSON blobs with a TTL.
type SessionCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionCache(client RedisClient, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionCache{client: client, ttl: ttl}
}

func sessionKey(uid string) string { return "session_ctx:" + uid }

func (c *SessionCache) Get(ctx context.Context, uid string) (*model.SessionContext, error) {
	raw, err := c.client.Get(ctx, sessionKey(uid))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var sctx model.SessionContext
	if err := json.Unmarshal([]byte(raw), &sctx); err != nil {
		// A corrupt entry is as good as a miss; the caller re-derives.
		return nil, domain.ErrNotFound
	}
	return &sctx, nil
}

func (c *SessionCache) Set(ctx context.Context, uid string, sctx *model.SessionContext) error {
	b, err := json.Marshal(sctx)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}
	return c.client.Set(ctx, sessionKey(uid), string(b), c.ttl)
}

func (c *SessionCache) Clear(ctx context.Context, uid string) error {
	return c.client.Del(ctx, sessionKey(uid))
}
