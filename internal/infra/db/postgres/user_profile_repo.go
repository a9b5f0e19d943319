// File: internal/infra/db/postgres/user_profile_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.UserProfileRepository = (*userProfileRepo)(nil)

type userProfileRepo struct {
	pool *pgxpool.Pool
}

func NewUserProfileRepo(pool *pgxpool.Pool) repository.UserProfileRepository {
	return &userProfileRepo{pool: pool}
}

func (r *userProfileRepo) FindByUID(ctx context.Context, uid string) (*model.UserProfile, error) {
	const q = `
SELECT uid, email, username, guild_id, vip_tier, vip_expires_at, created_at, updated_at
  FROM user_profiles
 WHERE uid = $1;
`
	var p model.UserProfile
	err := r.pool.QueryRow(ctx, q, uid).Scan(
		&p.UID, &p.Email, &p.Username, &p.GuildID, &p.VIPTier, &p.VIPExpiresAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan user profile: %w", err)
	}
	return &p, nil
}

func (r *userProfileRepo) Save(ctx context.Context, p *model.UserProfile) error {
	const q = `
INSERT INTO user_profiles (uid, email, username, guild_id, vip_tier, vip_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (uid) DO UPDATE SET
  email          = EXCLUDED.email,
  username       = EXCLUDED.username,
  guild_id       = EXCLUDED.guild_id,
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	_, err := r.pool.Exec(ctx, q, p.UID, p.Email, p.Username, p.GuildID, p.VIPTier, p.VIPExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("save user profile: %w", err)
	}
	return nil
}

func (r *userProfileRepo) SetGuild(ctx context.Context, uid, guildID string) error {
	const q = `
INSERT INTO user_profiles (uid, guild_id, created_at, updated_at)
VALUES ($1, $2, now(), now())
ON CONFLICT (uid) DO UPDATE SET
  guild_id   = EXCLUDED.guild_id,
  updated_at = now();
`
	if _, err := r.pool.Exec(ctx, q, uid, guildID); err != nil {
		return fmt.Errorf("set user guild: %w", err)
	}
	return nil
}

func (r *userProfileRepo) SetEntitlement(ctx context.Context, uid, tier string, expiresAt *time.Time) error {
	const q = `
INSERT INTO user_profiles (uid, vip_tier, vip_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (uid) DO UPDATE SET
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	if _, err := r.pool.Exec(ctx, q, uid, tier, expiresAt); err != nil {
		return fmt.Errorf("set user entitlement: %w", err)
	}
	return nil
}
