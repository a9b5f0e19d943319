package repository

import (
	"context"
	"time"

	"guildahub/internal/domain/model"
)

// GuildConfigRepository stores membership and entitlement per guild.
type GuildConfigRepository interface {
	FindByID(ctx context.Context, guildID string) (*model.GuildConfig, error)
	// FindByMemberEmail locates the guild whose leaders, admins or owner
	// include the (already normalized) email.
	FindByMemberEmail(ctx context.Context, email string) (*model.GuildConfig, error)
	Save(ctx context.Context, cfg *model.GuildConfig) error
	SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error
	// ListExpired returns guilds whose paid entitlement window has passed.
	ListExpired(ctx context.Context, now time.Time, limit int) ([]*model.GuildConfig, error)
}

// GuildProfileRepository stores the public guild record. Entitlement writes
// mirror GuildConfig for pages still reading the legacy document.
type GuildProfileRepository interface {
	FindByID(ctx context.Context, guildID string) (*model.GuildProfile, error)
	Save(ctx context.Context, p *model.GuildProfile) error
	SetEntitlement(ctx context.Context, guildID, tier string, expiresAt *time.Time) error
}
