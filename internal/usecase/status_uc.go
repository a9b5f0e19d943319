// File: internal/usecase/status_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/adapter"
	"guildahub/internal/domain/ports/repository"
)

var _ StatusUseCase = (*statusUC)(nil)

// StatusResult is what a status query returns to the caller.
type StatusResult struct {
	PaymentID      string
	ProviderStatus string
	Label          model.StatusLabel
	UID            string
}

type StatusUseCase interface {
	// Reconcile fetches the provider's current status for a payment and
	// synchronizes the owner's request record. Only the owning user or a
	// listed operator may reconcile.
	Reconcile(ctx context.Context, ident adapter.Identity, paymentID string) (*StatusResult, error)
}

type statusUC struct {
	requests  repository.PaymentRequestRepository
	operators repository.OperatorRepository
	gateway   adapter.PixGateway
	log       *zerolog.Logger
}

func NewStatusUseCase(
	requests repository.PaymentRequestRepository,
	operators repository.OperatorRepository,
	gateway adapter.PixGateway,
	logger *zerolog.Logger,
) *statusUC {
	l := logger.With().Str("component", "StatusUC").Logger()
	return &statusUC{requests: requests, operators: operators, gateway: gateway, log: &l}
}

func (u *statusUC) Reconcile(ctx context.Context, ident adapter.Identity, paymentID string) (*StatusResult, error) {
	if ident.UID == "" {
		return nil, domain.ErrUnauthorized
	}
	if paymentID == "" {
		return nil, fmt.Errorf("paymentId: %w", domain.ErrInvalidArgument)
	}

	p, err := u.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	ref := model.ParseReference(p.ExternalReference)
	if ref.UID == "" {
		// A payment without an owner linkage is unusable.
		return nil, fmt.Errorf("payment %s has no owner reference: %w", paymentID, domain.ErrInvalidArgument)
	}

	if ident.UID != ref.UID {
		isOp, err := u.operators.IsOperator(ctx, model.NormalizeEmail(ident.Email))
		if err != nil {
			return nil, fmt.Errorf("operator lookup: %w", err)
		}
		if !isOp {
			return nil, domain.ErrForbidden
		}
	}

	label := model.LabelFor(p.Status)
	if err := u.requests.UpdateStatus(ctx, ref.UID, p.Status, label); err != nil {
		return nil, fmt.Errorf("persist status: %w", err)
	}

	u.log.Debug().Str("payment_id", paymentID).Str("uid", ref.UID).
		Str("status", p.Status).Str("label", string(label)).Msg("status reconciled")
	return &StatusResult{
		PaymentID:      paymentID,
		ProviderStatus: p.Status,
		Label:          label,
		UID:            ref.UID,
	}, nil
}
