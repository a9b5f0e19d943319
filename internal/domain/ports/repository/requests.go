package repository

import (
	"context"

	"guildahub/internal/domain/model"
)

// PaymentRequestRepository persists the per-user upgrade request records.
// Upsert has merge semantics: empty fields on the incoming record never
// clobber previously stored values.
type PaymentRequestRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.PaymentRequest, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRequest, error)
	Upsert(ctx context.Context, req *model.PaymentRequest) error
	UpdateStatus(ctx context.Context, uid, providerStatus string, label model.StatusLabel) error
}
