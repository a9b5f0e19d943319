// File: internal/infra/db/postgres/guild_config_repo.go
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
var _ repository.GuildConfigRepository = (*guildConfigRepo)(nil)

type guildConfigRepo struct {
	pool *pgxpool.Pool
}

func NewGuildConfigRepo(pool *pgxpool.Pool) repository.GuildConfigRepository {
	return &guildConfigRepo{pool: pool}
}

const guildConfigCols = `
id, owner_uid, owner_email, leaders, admins, player_email, member_tag,
vip_tier, vip_expires_at, created_at, updated_at`

func (r *guildConfigRepo) FindByID(ctx context.Context, guildID string) (*model.GuildConfig, error) {
	q := `SELECT ` + guildConfigCols + ` FROM guild_configs WHERE id = $1;`
	return scanGuildConfig(r.pool.QueryRow(ctx, q, guildID))
}

func (r *guildConfigRepo) FindByMemberEmail(ctx context.Context, email string) (*model.GuildConfig, error) {
	// Emails are normalized at write time, so list membership is a plain
	// equality check.
	q := `
SELECT ` + guildConfigCols + `
  FROM guild_configs
 WHERE $1 = ANY(leaders) OR $1 = ANY(admins) OR owner_email = $1 OR player_email = $1
 LIMIT 1;
`
	return scanGuildConfig(r.pool.QueryRow(ctx, q, email))
}

func (r *guildConfigRepo) Save(ctx context.Context, cfg *model.GuildConfig) error {
	const q = `
INSERT INTO guild_configs (` + guildConfigCols + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
ON CONFLICT (id) DO UPDATE SET
  owner_uid      = EXCLUDED.owner_uid,
  owner_email    = EXCLUDED.owner_email,
  leaders        = EXCLUDED.leaders,
  admins         = EXCLUDED.admins,
  player_email   = EXCLUDED.player_email,
  member_tag     = EXCLUDED.member_tag,
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	leaders := cfg.Leaders
	if leaders == nil {
		leaders = []string{}
	}
	admins := cfg.Admins
	if admins == nil {
		admins = []string{}
	}
	_, err := r.pool.Exec(ctx, q,
		cfg.ID, cfg.OwnerUID, cfg.OwnerEmail, leaders, admins,
		cfg.PlayerEmail, cfg.MemberTag, cfg.VIPTier, cfg.VIPExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("save guild config: %w", err)
	}
	return nil
}

// SetEntitlement writes only the VIP fields. Insert-or-update so a grant is
// never lost to a missing config row.
func (r *guildConfigRepo) SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error {
	const q = `
INSERT INTO guild_configs (id, leaders, admins, vip_tier, vip_expires_at, created_at, updated_at)
VALUES ($1, '{}', '{}', $2, $3, now(), now())
ON CONFLICT (id) DO UPDATE SET
  vip_tier       = EXCLUDED.vip_tier,
  vip_expires_at = EXCLUDED.vip_expires_at,
  updated_at     = now();
`
	if _, err := r.pool.Exec(ctx, q, guildID, tier, expiresAt); err != nil {
		return fmt.Errorf("set guild entitlement: %w", err)
	}
	return nil
}

func (r *guildConfigRepo) ListExpired(ctx context.Context, now time.Time, limit int) ([]*model.GuildConfig, error) {
	const q = `
SELECT ` + guildConfigCols + `
  FROM guild_configs
 WHERE vip_tier NOT IN ('', 'free')
   AND (vip_expires_at IS NULL OR vip_expires_at < $1)
 ORDER BY vip_expires_at NULLS FIRST
 LIMIT $2;
`
	rows, err := r.pool.Query(ctx, q, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list expired guilds: %w", err)
	}
	defer rows.Close()

	var out []*model.GuildConfig
	for rows.Next() {
		cfg, err := scanGuildConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, rows.Err()
}

func scanGuildConfig(row pgx.Row) (*model.GuildConfig, error) {
	var cfg model.GuildConfig
	err := row.Scan(
		&cfg.ID, &cfg.OwnerUID, &cfg.OwnerEmail, &cfg.Leaders, &cfg.Admins,
		&cfg.PlayerEmail, &cfg.MemberTag, &cfg.VIPTier, &cfg.VIPExpiresAt,
		&cfg.CreatedAt, &cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan guild config: %w", err)
	}
	return &cfg, nil
}
