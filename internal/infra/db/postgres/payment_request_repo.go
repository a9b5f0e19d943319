// File: internal/infra/db/postgres/payment_request_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"guildahub/internal/domain"
	"guildahub/internal/domain/model"
	"guildahub/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.PaymentRequestRepository = (*paymentRequestRepo)(nil)

type paymentRequestRepo struct {
	pool *pgxpool.Pool
}

func NewPaymentRequestRepo(pool *pgxpool.Pool) repository.PaymentRequestRepository {
	return &paymentRequestRepo{pool: pool}
}

const paymentRequestCols = `
id, uid, payment_id, provider_status, label, plan, email, guild_id,
amount_cents, qr_code, qr_base64, idempotency_key, notification_url,
created_at, updated_at`

func (r *paymentRequestRepo) FindByUID(ctx context.Context, uid string) (*model.PaymentRequest, error) {
	q := `SELECT ` + paymentRequestCols + ` FROM payment_requests WHERE uid = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, uid))
}

func (r *paymentRequestRepo) FindByPaymentID(ctx context.Context, paymentID string) (*model.PaymentRequest, error) {
	q := `SELECT ` + paymentRequestCols + ` FROM payment_requests WHERE payment_id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, paymentID))
}

// Upsert writes the per-user request record. Merge semantics: empty incoming
// fields keep whatever the row already holds, so a partial webhook update
// never wipes the original charge details.
func (r *paymentRequestRepo) Upsert(ctx context.Context, req *model.PaymentRequest) error {
	const q = `
INSERT INTO payment_requests (` + paymentRequestCols + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (uid) DO UPDATE SET
  payment_id       = COALESCE(NULLIF(EXCLUDED.payment_id, ''), payment_requests.payment_id),
  provider_status  = COALESCE(NULLIF(EXCLUDED.provider_status, ''), payment_requests.provider_status),
  label            = COALESCE(NULLIF(EXCLUDED.label, ''), payment_requests.label),
  plan             = COALESCE(NULLIF(EXCLUDED.plan, ''), payment_requests.plan),
  email            = COALESCE(NULLIF(EXCLUDED.email, ''), payment_requests.email),
  guild_id         = COALESCE(NULLIF(EXCLUDED.guild_id, ''), payment_requests.guild_id),
  amount_cents     = CASE WHEN EXCLUDED.amount_cents > 0 THEN EXCLUDED.amount_cents ELSE payment_requests.amount_cents END,
  qr_code          = COALESCE(NULLIF(EXCLUDED.qr_code, ''), payment_requests.qr_code),
  qr_base64        = COALESCE(NULLIF(EXCLUDED.qr_base64, ''), payment_requests.qr_base64),
  idempotency_key  = COALESCE(NULLIF(EXCLUDED.idempotency_key, ''), payment_requests.idempotency_key),
  notification_url = COALESCE(NULLIF(EXCLUDED.notification_url, ''), payment_requests.notification_url),
  updated_at       = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, q,
		req.ID, req.UID, req.PaymentID, req.ProviderStatus, string(req.Label), string(req.Plan),
		req.Email, req.GuildID, req.AmountCents, req.QRCode, req.QRBase64,
		req.IdempotencyKey, req.NotificationURL, req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert payment request: %w", err)
	}
	return nil
}

func (r *paymentRequestRepo) UpdateStatus(ctx context.Context, uid, providerStatus string, label model.StatusLabel) error {
	const q = `
UPDATE payment_requests
   SET provider_status = $2, label = $3, updated_at = now()
 WHERE uid = $1;
`
	tag, err := r.pool.Exec(ctx, q, uid, providerStatus, string(label))
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *paymentRequestRepo) scanOne(row pgx.Row) (*model.PaymentRequest, error) {
	var rec model.PaymentRequest
	var label, plan string
	err := row.Scan(
		&rec.ID, &rec.UID, &rec.PaymentID, &rec.ProviderStatus, &label, &plan,
		&rec.Email, &rec.GuildID, &rec.AmountCents, &rec.QRCode, &rec.QRBase64,
		&rec.IdempotencyKey, &rec.NotificationURL, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan payment request: %w", err)
	}
	rec.Label = model.StatusLabel(label)
	rec.Plan = model.PlanID(plan)
	return &rec, nil
}
