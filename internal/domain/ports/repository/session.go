package repository

import (
	"context"

	"guildahub/internal/domain/model"
)

// SessionCache memoizes resolved session contexts between page loads.
// Cleared on logout.
type SessionCache interface {
	Get(ctx context.Context, uid string) (*model.SessionContext, error)
	Set(ctx context.Context, uid string, sctx *model.SessionContext) error
	Clear(ctx context.Context, uid string) error
}
