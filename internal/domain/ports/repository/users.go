package repository

import (
	"context"
	"time"

	"guildahub/internal/domain/model"
)

// UserProfileRepository links identities to guilds.
type UserProfileRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.UserProfile, error)
	Save(ctx context.Context, p *model.UserProfile) error
	SetGuild(ctx context.Context, uid, guildID string) error
	SetEntitlement(ctx context.Context, uid, tier string, expiresAt *time.Time) error
}

// OperatorRepository answers whether an email belongs to the privileged
// operator list allowed to reconcile any payment.
type OperatorRepository interface {
	IsOperator(ctx context.Context, email string) (bool, error)
}
