package adapter

import "context"

// CreatePixRequest is everything the provider needs to issue a PIX charge.
type CreatePixRequest struct {
	AmountCents       int64
	Description       string
	PayerEmail        string
	NotificationURL   string
	ExternalReference string
	IdempotencyKey    string
}

// PixCharge is the provider's answer to a creation request.
type PixCharge struct {
	PaymentID string
	Status    string
	QRCode    string
	QRBase64  string
}

// ProviderPayment is the authoritative payment state fetched by id.
type ProviderPayment struct {
	ID                string
	Status            string
	ExternalReference string
}

// PixGateway talks to the external payment provider.
type PixGateway interface {
	CreatePix(ctx context.Context, req CreatePixRequest) (*PixCharge, error)
	GetPayment(ctx context.Context, paymentID string) (*ProviderPayment, error)
	Name() string
}
