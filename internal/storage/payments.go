package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const paymentColumns = `id, order_id, restaurant_id, amount, currency, gateway, status, gateway_reference,
	idempotency_key, customer_phone, customer_email, error_message, retry_count, response_data,
	created_at, updated_at, completed_at`

func scanPayment(row scanner) (*domain.PaymentAttempt, error) {
	var p domain.PaymentAttempt
	var response []byte
	var completedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.OrderID, &p.RestaurantID, &p.Amount, &p.Currency, &p.Gateway, &p.Status,
		&p.GatewayReference, &p.IdempotencyKey, &p.CustomerPhone, &p.CustomerEmail, &p.ErrorMessage,
		&p.RetryCount, &response, &p.CreatedAt, &p.UpdatedAt, &completedAt); err != nil {
		return nil, err
	}
	if len(response) > 0 {
		p.ResponseData = json.RawMessage(response)
	}
	p.CompletedAt = timePtr(completedAt)
	return &p, nil
}

func nullJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func (r *PostgresRepository) CreatePayment(ctx context.Context, p *domain.PaymentAttempt) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO payments (
			id, order_id, restaurant_id, amount, currency, gateway, status, gateway_reference,
			idempotency_key, customer_phone, customer_email, error_message, retry_count, response_data,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		p.ID, p.OrderID, p.RestaurantID, p.Amount, p.Currency, p.Gateway, p.Status, p.GatewayReference,
		p.IdempotencyKey, p.CustomerPhone, p.CustomerEmail, p.ErrorMessage, p.RetryCount, nullJSON(p.ResponseData),
		p.CreatedAt, p.UpdatedAt)
	return translate(err, "payment", "idempotency_key", p.IdempotencyKey)
}

// UpdatePayment is a compare-and-swap on the stored status.
func (r *PostgresRepository) UpdatePayment(ctx context.Context, p *domain.PaymentAttempt, from domain.PaymentStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, gateway_reference = $3, error_message = $4, retry_count = $5,
			response_data = $6, updated_at = $7, completed_at = $8
		WHERE id = $1 AND status = $9`,
		p.ID, p.Status, p.GatewayReference, truncate(p.ErrorMessage), p.RetryCount,
		nullJSON(p.ResponseData), p.UpdatedAt, p.CompletedAt, from)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrPaymentChanged
	}
	return nil
}

func (r *PostgresRepository) GetPayment(ctx context.Context, id uuid.UUID) (*domain.PaymentAttempt, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "payment", "id", id.String())
	}
	return p, nil
}

func (r *PostgresRepository) GetPaymentByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentAttempt, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE idempotency_key = $1`, key))
	if err != nil {
		return nil, translate(err, "payment", "idempotency_key", key)
	}
	return p, nil
}

func (r *PostgresRepository) GetPaymentByGatewayReference(ctx context.Context, reference string) (*domain.PaymentAttempt, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE gateway_reference = $1
		ORDER BY created_at DESC LIMIT 1`, reference))
	if err != nil {
		return nil, translate(err, "payment", "gateway_reference", reference)
	}
	return p, nil
}

// GetLatestPaymentForOrder returns the most recent attempt for the order.
func (r *PostgresRepository) GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*domain.PaymentAttempt, error) {
	p, err := scanPayment(r.DB.QueryRowContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE order_id = $1
		ORDER BY created_at DESC LIMIT 1`, orderID))
	if err != nil {
		return nil, translate(err, "payment", "order_id", orderID.String())
	}
	return p, nil
}

// ListStaleProcessing returns attempts still waiting on the gateway since
// before the cutoff.
func (r *PostgresRepository) ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]domain.PaymentAttempt, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE status = 'processing' AND updated_at < $1
		ORDER BY updated_at
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.PaymentAttempt
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
