// File: internal/infra/db/postgres/guild_profile_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.GuildProfileRepository = (*guildProfileRepo)(nil)

type guildProfileRepo struct {
	pool *pgxpool.Pool
}

func NewGuildProfileRepo(pool *pgxpool.Pool) repository.GuildProfileRepository {
	return &guildProfileRepo{pool: pool}
}

func (r *guildProfileRepo) FindByID(ctx context.Context, guildID string) (*model.GuildProfile, error) {
	const q = `
SELECT id, name, owner_uid, owner_email, vip_tier, vip_expires_at, created_at, updated_at
  FROM guild_profiles
 WHERE id = $1;
`
	var p model.GuildProfile
	err := r.pool.QueryRow(ctx, q, guildID).Scan(
		&p.ID, &p.Name, &p.OwnerUID, &p.OwnerEmail, &p.VIPTier, &p.VIPExpiresAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan guild profile: %w", err)
	}
	return &p, nil
}

func (r *guildProfileRepo) Save(ctx context.Context, p *model.GuildProfile) error {
	const q = `
INSERT INTO guild_profiles (id, name, owner_uid, owner_email, vip_tier, vip_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
  name           = EXCLUDED.name,
  owner_uid      = EXCLUDED.owner_uid,
  owner_email    = EXCLUDED.owner_email,
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	_, err := r.pool.Exec(ctx, q, p.ID, p.Name, p.OwnerUID, p.OwnerEmail, p.VIPTier, p.VIPExpiresAt)
	if err != nil {
		return fmt.Errorf("save guild profile: %w", err)
	}
	return nil
}

func (r *guildProfileRepo) SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error {
	const q = `
INSERT INTO guild_profiles (id, vip_tier, vip_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	if _, err := r.pool.Exec(ctx, q, guildID, tier, expiresAt); err != nil {
		return fmt.Errorf("set guild profile entitlement: %w", err)
	}
	return nil
}
