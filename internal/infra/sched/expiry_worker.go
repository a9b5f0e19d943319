// File: internal/infra/sched/expiry_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
	"guildahub/internal/infra/metrics"
)

const sweepBatch = 100

// ExpiryWorker periodically downgrades guilds whose entitlement window has
// passed. The session resolver applies the same rule lazily; the sweep keeps
// storage honest for guilds nobody logs into.
type ExpiryWorker struct {
	interval      time.Duration
	guilds        repository.GuildConfigRepository
	guildProfiles repository.GuildProfileRepository
	log           *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, guilds repository.GuildConfigRepository, guildProfiles repository.GuildProfileRepository, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:      interval,
		guilds:        guilds,
		guildProfiles: guildProfiles,
		log:           &exprLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.sweep(ctx)
			if err != nil {
				w.log.Error().Err(err).Msg("expiry worker error")
			}
			if n > 0 {
				metrics.AddEntitlementsExpired(n)
				w.log.Info().Int("count", n).Msg("expired guild entitlements downgraded")
			}
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) (int, error) {
	expired, err := w.guilds.ListExpired(ctx, time.Now(), sweepBatch)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, g := range expired {
		if err := w.guilds.SetEntitlement(ctx, g.ID, model.TierFree, nil); err != nil {
			w.log.Error().Err(err).Str("guild_id", g.ID).Msg("failed to downgrade guild")
			continue
		}
		if err := w.guildProfiles.SetEntitlement(ctx, g.ID, model.TierFree, nil); err != nil {
			w.log.Warn().Err(err).Str("guild_id", g.ID).Msg("failed to mirror downgrade to guild profile")
		}
		count++
	}
	return count, nil
}
