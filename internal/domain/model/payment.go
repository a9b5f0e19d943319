package model

import (
	"strings"
	"time"
)

// StatusLabel is the internal label derived from the provider's raw status.
type StatusLabel string

const (
	LabelPendente StatusLabel = "pendente"
	LabelAprovado StatusLabel = "aprovado"
	LabelRecusado StatusLabel = "recusado"
	LabelExpirado StatusLabel = "expirado"
)

// LabelFor maps a Mercado Pago payment status onto the internal label.
// Unknown statuses are treated as still pending.
func LabelFor(providerStatus string) StatusLabel {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "approved":
		return LabelAprovado
	case "pending", "in_process":
		return LabelPendente
	case "rejected":
		return LabelRecusado
	case "cancelled", "expired", "refunded", "charged_back":
		return LabelExpirado
	default:
		return LabelPendente
	}
}

// Terminal reports whether no further provider transitions are expected.
func (l StatusLabel) Terminal() bool { return l != LabelPendente }

// PaymentRequest is the per-user upgrade request record. There is at most one
// record per user; it is merge-updated in place as the provider status moves.
type PaymentRequest struct {
	ID              string // ULID, assigned at creation
	UID             string // record key: one active request per user
	PaymentID       string // provider payment id
	ProviderStatus  string
	Label           StatusLabel
	Plan            PlanID
	Email           string
	GuildID         string
	AmountCents     int64
	QRCode          string // PIX copy-paste code
	QRBase64        string // PIX QR image
	IdempotencyKey  string
	NotificationURL string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Pending reports whether the record still holds a live provider charge that a
// repeat creation request must reuse instead of duplicating.
func (r *PaymentRequest) Pending() bool {
	return r != nil && r.Label == LabelPendente && r.PaymentID != ""
}
