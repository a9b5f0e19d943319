// File: internal/usecase/webhook_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/domain/ports/repository"
	"guildahub/internal/infra/metrics"
)

var _ WebhookUseCase = (*webhookUC)(nil)

type WebhookUseCase interface {
	// Process handles one provider notification for the given payment id.
	// The HTTP layer acknowledges regardless of the returned error; the
	// provider's own redelivery is the only retry mechanism.
	Process(ctx context.Context, paymentID string) error
}

type webhookUC struct {
	requests      repository.PaymentRequestRepository
	guilds        repository.GuildConfigRepository
	guildProfiles repository.GuildProfileRepository
	users         repository.UserProfileRepository
	gateway       adapter.PixGateway
	now           func() time.Time
	log           *zerolog.Logger
}

func NewWebhookUseCase(
	requests repository.PaymentRequestRepository,
	guilds repository.GuildConfigRepository,
	guildProfiles repository.GuildProfileRepository,
	users repository.UserProfileRepository,
	gateway adapter.PixGateway,
	logger *zerolog.Logger,
) *webhookUC {
	l := logger.With().Str("component", "WebhookUC").Logger()
	return &webhookUC{
		requests:      requests,
		guilds:        guilds,
		guildProfiles: guildProfiles,
		users:         users,
		gateway:       gateway,
		now:           time.Now,
		log:           &l,
	}
}

func (u *webhookUC) Process(ctx context.Context, paymentID string) error {
	p, err := u.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		metrics.IncWebhook("provider_error")
		return fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}

	label := model.LabelFor(p.Status)
	ref := model.ParseReference(p.ExternalReference)

	// Fill gaps from the stored record when the reference is incomplete.
	existing, err := u.requests.FindByPaymentID(ctx, paymentID)
	if err != nil && err != domain.ErrNotFound {
		metrics.IncWebhook("error")
		return fmt.Errorf("load request record: %w", err)
	}
	if existing != nil {
		if ref.UID == "" {
			ref.UID = existing.UID
		}
		if ref.GuildID == "" {
			ref.GuildID = existing.GuildID
		}
		if ref.Plan == "" {
			ref.Plan = existing.Plan
		}
	}
	if ref.UID == "" {
		// Without an owner there is no record to update; acknowledge and move on.
		u.log.Warn().Str("payment_id", paymentID).Msg("notification without owner reference")
		metrics.IncWebhook("orphan")
		return nil
	}

	rec := &model.PaymentRequest{
		UID:            ref.UID,
		PaymentID:      paymentID,
		ProviderStatus: p.Status,
		Label:          label,
		Plan:           ref.Plan,
		GuildID:        ref.GuildID,
		UpdatedAt:      u.now(),
	}
	if existing == nil {
		rec.ID = ulid.Make().String()
		rec.CreatedAt = rec.UpdatedAt
	}
	if err := u.requests.Upsert(ctx, rec); err != nil {
		metrics.IncWebhook("error")
		return fmt.Errorf("persist request record: %w", err)
	}

	if label == model.LabelAprovado && ref.Plan != "" {
		u.grantEntitlement(ctx, ref)
	}

	metrics.IncWebhook(string(label))
	return nil
}

// grantEntitlement writes the VIP tier and a fresh expiry onto the guild
// records. Each approved delivery recomputes now+duration; a redelivery resets
// the window rather than stacking it. The multi-document write is not atomic;
// partial application on crash is an accepted risk.
func (u *webhookUC) grantEntitlement(ctx context.Context, ref model.Reference) {
	days := model.EntitlementDays(ref.Plan)
	expiresAt := u.now().Add(time.Duration(days) * 24 * time.Hour)
	tier := string(ref.Plan)

	if ref.GuildID != "" {
		if err := u.guilds.SetEntitlement(ctx, ref.GuildID, tier, &expiresAt); err != nil {
			u.log.Error().Err(err).Str("guild_id", ref.GuildID).Msg("guild entitlement write failed")
		}
		// Legacy guild record kept in sync for pages that still read it.
		if err := u.guildProfiles.SetEntitlement(ctx, ref.GuildID, tier, &expiresAt); err != nil {
			u.log.Warn().Err(err).Str("guild_id", ref.GuildID).Msg("guild profile entitlement write failed")
		}
	}
	if err := u.users.SetEntitlement(ctx, ref.UID, tier, &expiresAt); err != nil {
		u.log.Warn().Err(err).Str("uid", ref.UID).Msg("user entitlement mirror failed")
	}

	metrics.IncEntitlementGranted(tier)
	u.log.Info().Str("guild_id", ref.GuildID).Str("uid", ref.UID).
		Str("tier", tier).Time("expires_at", expiresAt).Msg("vip entitlement granted")
}
