package domain

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GatewayRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Gateway   Gateway         `json:"provider"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email,omitempty"`
}

// GatewayResult is the outcome of a synchronous validation. When Accepted
// is false, Err is a *TransientRemoteError or *TerminalRemoteError and the
// caller must branch on which.
type GatewayResult struct {
	Accepted  bool
	Reference string
	Response  json.RawMessage
	Err       error
}

func (r GatewayResult) Retryable() bool {
	var transient *TransientRemoteError
	return !r.Accepted && errors.As(r.Err, &transient)
}

// PaymentCompletion is the asynchronous notification sent by the gateway.
type PaymentCompletion struct {
	TransactionID  string          `json:"transaction_id"`
	IdempotencyKey string          `json:"idempotency_key,omitempty"`
	Status         PaymentStatus   `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Message        string          `json:"message,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
}

type PaymentRequest struct {
	OrderID       uuid.UUID       `json:"order_id"`
	RestaurantID  uuid.UUID       `json:"restaurant_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Gateway       Gateway         `json:"gateway"`
	Reference     string          `json:"reference"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	CustomerEmail string          `json:"customer_email,omitempty"`
}

// Payer is the contact the idempotency key is derived from.
func (r PaymentRequest) Payer() string {
	if r.CustomerPhone != "" {
		return r.CustomerPhone
	}
	return r.CustomerEmail
}
