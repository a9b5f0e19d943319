// File: internal/usecase/signup_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/domain/ports/repository"
)

var _ SignupUseCase = (*signupUC)(nil)

type SignupUseCase interface {
	// Finalize completes account creation: an invited email joins its guild,
	// anyone else founds a new guild (guild id = uid) and becomes its leader.
	// This is the only path that creates guilds.
	Finalize(ctx context.Context, ident adapter.Identity, username string) (guildID string, err error)
}

type signupUC struct {
	users         repository.UserProfileRepository
	guilds        repository.GuildConfigRepository
	guildProfiles repository.GuildProfileRepository
	now           func() time.Time
	log           *zerolog.Logger
}

func NewSignupUseCase(
	users repository.UserProfileRepository,
	guilds repository.GuildConfigRepository,
	guildProfiles repository.GuildProfileRepository,
	logger *zerolog.Logger,
) *signupUC {
	l := logger.With().Str("component", "SignupUC").Logger()
	return &signupUC{users: users, guilds: guilds, guildProfiles: guildProfiles, now: time.Now, log: &l}
}

func (u *signupUC) Finalize(ctx context.Context, ident adapter.Identity, username string) (string, error) {
	if ident.UID == "" {
		return "", domain.ErrUnauthorized
	}
	uname := strings.TrimSpace(username)
	if uname == "" {
		return "", fmt.Errorf("username: %w", domain.ErrInvalidArgument)
	}
	email := model.NormalizeEmail(ident.Email)
	if email == "" {
		return "", domain.ErrInvalidEmail
	}

	guildID := ""
	if cfg, err := u.guilds.FindByMemberEmail(ctx, email); err == nil {
		// Invited: the guild and its profile must already exist.
		if _, err := u.guildProfiles.FindByID(ctx, cfg.ID); err != nil {
			return "", fmt.Errorf("invite to guild %s without profile record: %w", cfg.ID, err)
		}
		guildID = cfg.ID
	} else if err != domain.ErrNotFound {
		return "", fmt.Errorf("membership search: %w", err)
	}

	now := u.now()
	if guildID == "" {
		guildID = ident.UID
		if err := u.guilds.Save(ctx, &model.GuildConfig{
			ID:         guildID,
			OwnerUID:   ident.UID,
			OwnerEmail: email,
			Leaders:    []string{email}, // founder is leader from the start
			Admins:     []string{},
			VIPTier:    model.TierFree,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return "", fmt.Errorf("create guild config: %w", err)
		}
		if err := u.guildProfiles.Save(ctx, &model.GuildProfile{
			ID:         guildID,
			Name:       uname,
			OwnerUID:   ident.UID,
			OwnerEmail: email,
			VIPTier:    model.TierFree,
			CreatedAt:  now,
			UpdatedAt:  now,
		}); err != nil {
			return "", fmt.Errorf("create guild profile: %w", err)
		}
		u.log.Info().Str("guild_id", guildID).Str("owner", email).Msg("guild created")
	}

	if err := u.users.Save(ctx, &model.UserProfile{
		UID:       ident.UID,
		Email:     email,
		Username:  uname,
		GuildID:   guildID,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return "", fmt.Errorf("save user profile: %w", err)
	}

	return guildID, nil
}
