// File: internal/usecase/session_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/domain/ports/repository"
)

var _ SessionUseCase = (*sessionUC)(nil)

// SessionResolution is the outcome of resolving a session for a page load.
// When the page is disallowed for the role, Allowed is false and RedirectTo
// names the page the client should navigate to instead.
type SessionResolution struct {
	Context    *model.SessionContext
	Allowed    bool
	RedirectTo string
}

type SessionUseCase interface {
	// Resolve derives (or recalls) the caller's guild, role and entitlement
	// and gates the requested page. Membro accounts are rejected with
	// ErrAccessDenied; identities without any guild with ErrNoGuild.
	Resolve(ctx context.Context, ident adapter.Identity, page string) (*SessionResolution, error)
	// Logout drops the cached context.
	Logout(ctx context.Context, uid string) error
}

type sessionUC struct {
	users         repository.UserProfileRepository
	guilds        repository.GuildConfigRepository
	guildProfiles repository.GuildProfileRepository
	cache         repository.SessionCache
	now           func() time.Time
	log           *zerolog.Logger
}

func NewSessionUseCase(
	users repository.UserProfileRepository,
	guilds repository.GuildConfigRepository,
	guildProfiles repository.GuildProfileRepository,
	cache repository.SessionCache,
	logger *zerolog.Logger,
) *sessionUC {
	l := logger.With().Str("component", "SessionUC").Logger()
	return &sessionUC{
		users:         users,
		guilds:        guilds,
		guildProfiles: guildProfiles,
		cache:         cache,
		now:           time.Now,
		log:           &l,
	}
}

func (u *sessionUC) Resolve(ctx context.Context, ident adapter.Identity, page string) (*SessionResolution, error) {
	if ident.UID == "" {
		return nil, domain.ErrUnauthorized
	}

	sctx, err := u.cache.Get(ctx, ident.UID)
	if err != nil || sctx == nil || u.entitlementStale(sctx) {
		sctx, err = u.derive(ctx, ident)
		if err != nil {
			return nil, err
		}
		if err := u.cache.Set(ctx, ident.UID, sctx); err != nil {
			u.log.Warn().Err(err).Str("uid", ident.UID).Msg("session cache write failed")
		}
	}

	if sctx.Role == model.RoleMember {
		return nil, domain.ErrAccessDenied
	}
	if !model.PageAllowed(sctx.Role, page) {
		return &SessionResolution{Context: sctx, Allowed: false, RedirectTo: model.FallbackPage(sctx.Role)}, nil
	}
	return &SessionResolution{Context: sctx, Allowed: true}, nil
}

func (u *sessionUC) Logout(ctx context.Context, uid string) error {
	if uid == "" {
		return domain.ErrUnauthorized
	}
	return u.cache.Clear(ctx, uid)
}

// entitlementStale forces re-derivation once a cached VIP window has lapsed so
// the downgrade becomes visible without waiting for the cache TTL.
func (u *sessionUC) entitlementStale(sctx *model.SessionContext) bool {
	return sctx.VIPExpiresAt != nil && u.now().After(*sctx.VIPExpiresAt)
}

func (u *sessionUC) derive(ctx context.Context, ident adapter.Identity) (*model.SessionContext, error) {
	email := model.NormalizeEmail(ident.Email)

	guildID, err := u.resolveGuildID(ctx, ident.UID, email)
	if err != nil {
		return nil, err
	}

	cfg, err := u.guilds.FindByID(ctx, guildID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.ErrNoGuild
		}
		return nil, fmt.Errorf("load guild config: %w", err)
	}

	sctx := &model.SessionContext{
		UID:          ident.UID,
		Email:        email,
		GuildID:      guildID,
		Role:         cfg.RoleFor(ident.UID, email),
		VIPTier:      cfg.VIPTier,
		VIPExpiresAt: cfg.VIPExpiresAt,
	}
	if sctx.VIPTier == "" {
		sctx.VIPTier = model.TierFree
	}

	if cfg.EntitlementExpired(u.now()) {
		sctx.VIPTier = model.TierFree
		sctx.VIPExpiresAt = nil
		// Best effort: the UI proceeds with the local downgrade either way.
		if err := u.guilds.SetEntitlement(ctx, guildID, model.TierFree, nil); err != nil {
			u.log.Warn().Err(err).Str("guild_id", guildID).Msg("entitlement downgrade write failed")
		}
	}

	if prof, err := u.guildProfiles.FindByID(ctx, guildID); err == nil {
		sctx.GuildName = prof.Name
	}

	return sctx, nil
}

// resolveGuildID finds the guild for an identity: the profile pointer first,
// then membership by normalized email, then the identity's own uid as guild
// id. A membership hit is written back to the profile for the next page load.
func (u *sessionUC) resolveGuildID(ctx context.Context, uid, email string) (string, error) {
	prof, err := u.users.FindByUID(ctx, uid)
	if err == nil && prof.GuildID != "" {
		return prof.GuildID, nil
	}
	if err != nil && err != domain.ErrNotFound {
		return "", fmt.Errorf("load user profile: %w", err)
	}

	if email != "" {
		if cfg, err := u.guilds.FindByMemberEmail(ctx, email); err == nil {
			if err := u.users.SetGuild(ctx, uid, cfg.ID); err != nil {
				u.log.Warn().Err(err).Str("uid", uid).Msg("guild pointer write-back failed")
			}
			return cfg.ID, nil
		} else if err != domain.ErrNotFound {
			return "", fmt.Errorf("membership search: %w", err)
		}
	}

	// Founders created before profiles existed own the guild keyed by their uid.
	if _, err := u.guilds.FindByID(ctx, uid); err == nil {
		return uid, nil
	}

	return "", domain.ErrNoGuild
}
