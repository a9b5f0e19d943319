// File: internal/infra/payment/mercadopago.go
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"guildahub/internal/domain"
	"guildahub/internal/domain/ports/adapter"
)

var _ adapter.PixGateway = (*MercadoPagoGateway)(nil)

// MercadoPagoGateway implements adapter.PixGateway against the Mercado Pago
// /v1/payments REST API.
type MercadoPagoGateway struct {
	accessToken string
	baseURL     string
	client      *http.Client
}

func NewMercadoPagoGateway(accessToken, baseURL string) (*MercadoPagoGateway, error) {
	if accessToken == "" {
		return nil, errors.New("access token empty")
	}
	if baseURL == "" {
		baseURL = "https://api.mercadopago.com"
	}
	return &MercadoPagoGateway{
		accessToken: accessToken,
		baseURL:     baseURL,
		client:      &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *MercadoPagoGateway) Name() string { return "mercadopago" }

// mpPayment is the subset of the provider payment object we read. The id is
// numeric in provider responses; json.Number keeps it lossless.
type mpPayment struct {
	ID                json.Number `json:"id"`
	Status            string      `json:"status"`
	ExternalReference string      `json:"external_reference"`
	PointOfInteraction struct {
		TransactionData struct {
			QRCode       string `json:"qr_code"`
			QRCodeBase64 string `json:"qr_code_base64"`
		} `json:"transaction_data"`
	} `json:"point_of_interaction"`
}

func (g *MercadoPagoGateway) CreatePix(ctx context.Context, req adapter.CreatePixRequest) (*adapter.PixCharge, error) {
	payload := map[string]any{
		"transaction_amount": float64(req.AmountCents) / 100,
		"description":        req.Description,
		"payment_method_id":  "pix",
		"payer":              map[string]any{"email": req.PayerEmail},
		"external_reference": req.ExternalReference,
	}
	if req.NotificationURL != "" {
		payload["notification_url"] = req.NotificationURL
	}
	b, _ := json.Marshal(payload)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/payments", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)
	httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.GatewayRejectedError{StatusCode: resp.StatusCode, Body: body}
	}

	var out mpPayment
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	if out.ID.String() == "" || out.ID.String() == "0" {
		return nil, fmt.Errorf("%w: create response without payment id", domain.ErrUpstream)
	}
	return &adapter.PixCharge{
		PaymentID: out.ID.String(),
		Status:    out.Status,
		QRCode:    out.PointOfInteraction.TransactionData.QRCode,
		QRBase64:  out.PointOfInteraction.TransactionData.QRCodeBase64,
	}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, paymentID string) (*adapter.ProviderPayment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.accessToken)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: payment fetch http %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out mpPayment
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode payment: %w", err)
	}
	return &adapter.ProviderPayment{
		ID:                out.ID.String(),
		Status:            out.Status,
		ExternalReference: out.ExternalReference,
	}, nil
}
