// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/domain/ports/repository"
	"guildahub/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

const (
	createLimit    = 8
	createWindow   = time.Minute
	createCooldown = 30 * time.Minute
)

type PaymentUseCase interface {
	// CreatePix creates a PIX charge for the caller, or returns the still
	// pending one when the same plan is requested again.
	CreatePix(ctx context.Context, ident adapter.Identity, rawPlan string) (*model.PaymentRequest, error)
}

type paymentUC struct {
	requests repository.PaymentRequestRepository
	users    repository.UserProfileRepository
	gateway  adapter.PixGateway
	limiter  repository.RateLimiter
	cooldown repository.CooldownStore

	notificationURL string
	now             func() time.Time
	log             *zerolog.Logger
}

func NewPaymentUseCase(
	requests repository.PaymentRequestRepository,
	users repository.UserProfileRepository,
	gateway adapter.PixGateway,
	limiter repository.RateLimiter,
	cooldown repository.CooldownStore,
	notificationURL string,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{
		requests:        requests,
		users:           users,
		gateway:         gateway,
		limiter:         limiter,
		cooldown:        cooldown,
		notificationURL: notificationURL,
		now:             time.Now,
		log:             &l,
	}
}

func (u *paymentUC) CreatePix(ctx context.Context, ident adapter.Identity, rawPlan string) (*model.PaymentRequest, error) {
	if ident.UID == "" {
		return nil, domain.ErrUnauthorized
	}

	planID, err := model.NormalizePlan(rawPlan)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w", rawPlan, err)
	}

	email := model.NormalizeEmail(ident.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}

	ok, retryAfter, err := u.limiter.Allow(ctx, "pix_create:"+ident.UID, createLimit, createWindow)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}
	if !ok {
		return nil, &domain.RateLimitedError{RetryAfter: retryAfter, Reason: "too many requests"}
	}

	existing, err := u.requests.FindByUID(ctx, ident.UID)
	if err != nil && err != domain.ErrNotFound {
		return nil, fmt.Errorf("load request record: %w", err)
	}
	if existing.Pending() {
		if existing.Plan != planID {
			return nil, &domain.PendingConflictError{
				PendingPlan: string(existing.Plan),
				PaymentID:   existing.PaymentID,
			}
		}
		// Same plan still pending: hand back the same charge, no provider call.
		u.log.Debug().Str("uid", ident.UID).Str("payment_id", existing.PaymentID).Msg("reusing pending charge")
		return existing, nil
	}

	remaining, err := u.cooldown.Remaining(ctx, "pix_cooldown:"+ident.UID)
	if err != nil {
		return nil, fmt.Errorf("cooldown: %w", err)
	}
	if remaining > 0 {
		return nil, &domain.RateLimitedError{RetryAfter: remaining, Reason: "creation cooldown"}
	}

	guildID, err := u.guildFor(ctx, ident.UID)
	if err != nil {
		return nil, err
	}

	plan, _ := model.PlanByID(planID)
	ref := model.Reference{GuildID: guildID, UID: ident.UID, Plan: planID}
	idemKey := uuid.NewString()

	charge, err := u.gateway.CreatePix(ctx, adapter.CreatePixRequest{
		AmountCents:       plan.PriceCents,
		Description:       fmt.Sprintf("Guilda HUB - %s", strings.ToUpper(string(planID))),
		PayerEmail:        email,
		NotificationURL:   u.notificationURL,
		ExternalReference: ref.String(),
		IdempotencyKey:    idemKey,
	})
	if err != nil {
		// Provider rejections bubble up with their payload; nothing is persisted.
		metrics.IncPixCreated("rejected")
		return nil, err
	}

	now := u.now()
	rec := &model.PaymentRequest{
		ID:              ulid.Make().String(),
		UID:             ident.UID,
		PaymentID:       charge.PaymentID,
		ProviderStatus:  charge.Status,
		Label:           model.LabelFor(charge.Status),
		Plan:            planID,
		Email:           email,
		GuildID:         guildID,
		AmountCents:     plan.PriceCents,
		QRCode:          charge.QRCode,
		QRBase64:        charge.QRBase64,
		IdempotencyKey:  idemKey,
		NotificationURL: u.notificationURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := u.requests.Upsert(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist request record: %w", err)
	}

	if err := u.cooldown.Arm(ctx, "pix_cooldown:"+ident.UID, createCooldown); err != nil {
		// The charge exists either way; a lost cooldown only allows an early retry.
		u.log.Warn().Err(err).Str("uid", ident.UID).Msg("failed to arm creation cooldown")
	}

	metrics.IncPixCreated(charge.Status)
	u.log.Info().Str("uid", ident.UID).Str("payment_id", charge.PaymentID).
		Str("plan", string(planID)).Int64("amount_cents", plan.PriceCents).Msg("pix charge created")
	return rec, nil
}

// guildFor resolves the caller's guild from the profile record. The guild id
// in the charge reference comes from storage, never from the client.
func (u *paymentUC) guildFor(ctx context.Context, uid string) (string, error) {
	prof, err := u.users.FindByUID(ctx, uid)
	if err != nil {
		if err == domain.ErrNotFound {
			return "", domain.ErrNoGuild
		}
		return "", fmt.Errorf("load user profile: %w", err)
	}
	if prof.GuildID == "" {
		return "", domain.ErrNoGuild
	}
	return prof.GuildID, nil
}
