package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	RemoteRef string           `json:"remote_ref"`
	IsActive  bool             `json:"is_active"`
	TaxRate   *decimal.Decimal `json:"tax_rate,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type Modifier struct {
	ID    string          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type OrderItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Modifiers    []Modifier      `json:"modifiers,omitempty"`
	Instructions string          `json:"instructions,omitempty"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

type Order struct {
	ID                   uuid.UUID       `json:"id"`
	RestaurantID         uuid.UUID       `json:"restaurant_id"`
	LocalOrderID         string          `json:"local_order_id"`
	RemoteID             string          `json:"remote_id,omitempty"`
	Items                []OrderItem     `json:"items"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	TaxAmount            decimal.Decimal `json:"tax_amount"`
	TotalAmount          decimal.Decimal `json:"total_amount"`
	Status               OrderStatus     `json:"status"`
	SyncStatus           SyncStatus      `json:"sync_status"`
	TableID              string          `json:"table_id,omitempty"`
	CustomerID           string          `json:"customer_id,omitempty"`
	SpecialInstructions  string          `json:"special_instructions,omitempty"`
	EstimatedPrepMinutes *int            `json:"estimated_preparation_time,omitempty"`
	ActualPrepMinutes    *int            `json:"actual_preparation_time,omitempty"`
	PaymentRef           string          `json:"payment_reference,omitempty"`
	SyncVersion          int64           `json:"sync_version"`
	SyncAttempts         int             `json:"sync_attempts"`
	LastSyncAttempt      *time.Time      `json:"last_sync_attempt,omitempty"`
	SyncError            string          `json:"sync_error,omitempty"`
	LastSyncedAt         *time.Time      `json:"last_synced_at,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	PrepStartedAt        *time.Time      `json:"preparation_started_at,omitempty"`
	CompletedAt          *time.Time      `json:"completed_at,omitempty"`
}

// ConflictState is the per-order logical clock. It orders local and remote
// edits but does not decide conflicts; updated_at does.
type ConflictState struct {
	OrderID       uuid.UUID        `json:"order_id"`
	Clock         map[string]int64 `json:"vector_clock"`
	LastOperation string           `json:"last_operation"`
	OperationAt   time.Time        `json:"operation_timestamp"`
}

const (
	ActorLocal  = "local"
	ActorRemote = "remote"
)

func NewConflictState(orderID uuid.UUID, at time.Time) ConflictState {
	return ConflictState{
		OrderID:       orderID,
		Clock:         map[string]int64{ActorLocal: 1, ActorRemote: 0},
		LastOperation: "order_create",
		OperationAt:   at,
	}
}

type MenuSnapshot struct {
	ID           uuid.UUID       `json:"id"`
	RestaurantID uuid.UUID       `json:"restaurant_id"`
	MenuData     json.RawMessage `json:"menu_data"`
	Version      int             `json:"version"`
	Checksum     string          `json:"checksum"`
	IsActive     bool            `json:"is_active"`
	LastSynced   time.Time       `json:"last_synced"`
	CreatedAt    time.Time       `json:"created_at"`
}

type OTPStatus string

const (
	OTPActive  OTPStatus = "active"
	OTPUsed    OTPStatus = "used"
	OTPExpired OTPStatus = "expired"
	OTPRevoked OTPStatus = "revoked"
)

type OTP struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	Code        string     `json:"code"`
	Status      OTPStatus  `json:"status"`
	ExpiresAt   time.Time  `json:"expires_at"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
	Attempts    int        `json:"attempts"`
	MaxAttempts int        `json:"max_attempts"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (o OTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
	PaymentCancelled  PaymentStatus = "cancelled"
)

type Gateway string

const (
	GatewayMomo       Gateway = "MOMO"
	GatewayVisa       Gateway = "VISA"
	GatewayMastercard Gateway = "MASTERCARD"
	GatewayCash       Gateway = "CASH"
)

func (g Gateway) Valid() bool {
	switch g {
	case GatewayMomo, GatewayVisa, GatewayMastercard, GatewayCash:
		return true
	}
	return false
}

type PaymentAttempt struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	RestaurantID     uuid.UUID       `json:"restaurant_id"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Gateway          Gateway         `json:"gateway"`
	Status           PaymentStatus   `json:"status"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	IdempotencyKey   string          `json:"idempotency_key"`
	CustomerPhone    string          `json:"customer_phone,omitempty"`
	CustomerEmail    string          `json:"customer_email,omitempty"`
	ErrorMessage     string          `json:"error_message,omitempty"`
	RetryCount       int             `json:"retry_count"`
	ResponseData     json.RawMessage `json:"response_data,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	CompletedAt      *time.Time      `json:"completed_at,omitempty"`
}

func (p PaymentAttempt) IsTerminal() bool {
	switch p.Status {
	case PaymentCompleted, PaymentFailed, PaymentRefunded, PaymentCancelled:
		return true
	}
	return false
}

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
)

type ActivityLog struct {
	ID           uuid.UUID      `json:"id"`
	RestaurantID *uuid.UUID     `json:"restaurant_id,omitempty"`
	Level        LogLevel       `json:"level"`
	Module       string         `json:"module"`
	Action       string         `json:"action"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"created_at"`
}

type Component string

const (
	ComponentDatabase Component = "DATABASE"
	ComponentRedis    Component = "REDIS"
	ComponentRemote   Component = "REMOTE"
)

type HealthCheck struct {
	Component      Component `json:"component"`
	IsHealthy      bool      `json:"is_healthy"`
	ResponseTimeMs *int64    `json:"response_time_ms,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	LastCheck      time.Time `json:"last_check"`
}

// OrderBundle is everything written by order creation in one transaction.
type OrderBundle struct {
	Order *Order
	State *ConflictState
	OTP   *OTP
	Entry *SyncEntry
}
