package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SyncKind string

const (
	KindCreateOrder     SyncKind = "create_order"
	KindUpdateOrder     SyncKind = "update_order"
	KindMenuUpdate      SyncKind = "menu_update"
	KindOrderDelete     SyncKind = "order_delete"
	KindInventoryUpdate SyncKind = "inventory_update"
)

type EntryStatus string

const (
	EntryPending    EntryStatus = "pending"
	EntryProcessing EntryStatus = "processing"
	EntryCompleted  EntryStatus = "completed"
	EntryFailed     EntryStatus = "failed"
	EntryConflict   EntryStatus = "conflict"
	EntryCancelled  EntryStatus = "cancelled"
)

func (s EntryStatus) Valid() bool {
	switch s {
	case EntryPending, EntryProcessing, EntryCompleted, EntryFailed, EntryConflict, EntryCancelled:
		return true
	}
	return false
}

const (
	DefaultPriority   = 5
	DefaultMaxRetries = 5
	MaxErrorLength    = 1000
)

type SyncEntry struct {
	ID             uuid.UUID       `json:"id"`
	RestaurantID   uuid.UUID       `json:"restaurant_id"`
	Kind           SyncKind        `json:"sync_type"`
	Status         EntryStatus     `json:"status"`
	Priority       int             `json:"priority"`
	Payload        json.RawMessage `json:"payload"`
	IdempotencyKey string          `json:"idempotency_key"`
	RemoteID       string          `json:"remote_id,omitempty"`
	RetryCount     int             `json:"retry_count"`
	MaxRetries     int             `json:"max_retries"`
	LastRetry      *time.Time      `json:"last_retry,omitempty"`
	NextRetry      *time.Time      `json:"next_retry,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
	Conflict       *ConflictData   `json:"conflict_data,omitempty"`
	ClaimedAt      *time.Time      `json:"claimed_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (e SyncEntry) CanRetry() bool {
	return e.Status == EntryFailed && e.RetryCount < e.MaxRetries
}

type CreateOrderPayload struct {
	OrderID      uuid.UUID `json:"order_id"`
	LocalOrderID string    `json:"local_order_id"`
}

type UpdateOrderPayload struct {
	OrderID        uuid.UUID   `json:"order_id"`
	PreviousStatus OrderStatus `json:"previous_status"`
	NewStatus      OrderStatus `json:"new_status"`
	Notes          string      `json:"notes,omitempty"`
	Timestamp      time.Time   `json:"timestamp"`
}

type MenuUpdatePayload struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
}

func newEntry(restaurantID uuid.UUID, kind SyncKind, key string, payload any) (*SyncEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	return &SyncEntry{
		ID:             uuid.New(),
		RestaurantID:   restaurantID,
		Kind:           kind,
		Status:         EntryPending,
		Priority:       DefaultPriority,
		Payload:        raw,
		IdempotencyKey: key,
		MaxRetries:     DefaultMaxRetries,
	}, nil
}

// NewCreateOrderEntry keys the entry by the local order id so the remote side
// can deduplicate repeated upserts of the same order.
func NewCreateOrderEntry(order *Order) (*SyncEntry, error) {
	return newEntry(order.RestaurantID, KindCreateOrder, order.LocalOrderID, CreateOrderPayload{
		OrderID:      order.ID,
		LocalOrderID: order.LocalOrderID,
	})
}

func NewUpdateOrderEntry(order *Order, previous OrderStatus, notes string, at time.Time) (*SyncEntry, error) {
	return newEntry(order.RestaurantID, KindUpdateOrder, uuid.NewString(), UpdateOrderPayload{
		OrderID:        order.ID,
		PreviousStatus: previous,
		NewStatus:      order.Status,
		Notes:          notes,
		Timestamp:      at,
	})
}

func NewMenuUpdateEntry(restaurantID uuid.UUID) (*SyncEntry, error) {
	return newEntry(restaurantID, KindMenuUpdate, uuid.NewString(), MenuUpdatePayload{RestaurantID: restaurantID})
}

func decodePayload(e SyncEntry, want SyncKind, into any) error {
	if e.Kind != want {
		return fmt.Errorf("entry %s has kind %s, not %s", e.ID, e.Kind, want)
	}
	if err := json.Unmarshal(e.Payload, into); err != nil {
		return fmt.Errorf("decode %s payload: %w", want, err)
	}
	return nil
}

func (e SyncEntry) CreateOrder() (CreateOrderPayload, error) {
	var p CreateOrderPayload
	err := decodePayload(e, KindCreateOrder, &p)
	return p, err
}

func (e SyncEntry) UpdateOrder() (UpdateOrderPayload, error) {
	var p UpdateOrderPayload
	err := decodePayload(e, KindUpdateOrder, &p)
	return p, err
}

func (e SyncEntry) MenuUpdate() (MenuUpdatePayload, error) {
	var p MenuUpdatePayload
	err := decodePayload(e, KindMenuUpdate, &p)
	return p, err
}

// OrderID returns the order an entry refers to, for kinds that carry one.
func (e SyncEntry) OrderID() (uuid.UUID, bool) {
	var probe struct {
		OrderID uuid.UUID `json:"order_id"`
	}
	if err := json.Unmarshal(e.Payload, &probe); err != nil || probe.OrderID == uuid.Nil {
		return uuid.Nil, false
	}
	return probe.OrderID, true
}

// RemoteOrder is the order shape exchanged with the remote store.
type RemoteOrder struct {
	ID                  string          `json:"id,omitempty"`
	LocalOrderID        string          `json:"local_order_id"`
	RestaurantRef       string          `json:"restaurant_id"`
	TableID             string          `json:"table_id,omitempty"`
	CustomerID          string          `json:"customer_id,omitempty"`
	Items               []OrderItem     `json:"items"`
	Subtotal            decimal.Decimal `json:"subtotal"`
	TaxAmount           decimal.Decimal `json:"tax_amount"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              OrderStatus     `json:"status"`
	SpecialInstructions string          `json:"special_instructions,omitempty"`
	SyncVersion         int64           `json:"sync_version"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func NewRemoteOrder(order *Order, restaurantRef string) RemoteOrder {
	return RemoteOrder{
		ID:                  order.RemoteID,
		LocalOrderID:        order.LocalOrderID,
		RestaurantRef:       restaurantRef,
		TableID:             order.TableID,
		CustomerID:          order.CustomerID,
		Items:               order.Items,
		Subtotal:            order.Subtotal,
		TaxAmount:           order.TaxAmount,
		TotalAmount:         order.TotalAmount,
		Status:              order.Status,
		SpecialInstructions: order.SpecialInstructions,
		SyncVersion:         order.SyncVersion,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

// OrderDelta is the field set pushed by an update.
type OrderDelta struct {
	Status      OrderStatus `json:"status,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
	SyncVersion int64       `json:"sync_version"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type ConflictData struct {
	Local      RemoteOrder `json:"local_version"`
	Remote     RemoteOrder `json:"remote_version"`
	DetectedAt time.Time   `json:"detected_at"`
}

type OrderEvent struct {
	Type         string      `json:"type"`
	OrderID      uuid.UUID   `json:"order_id"`
	LocalOrderID string      `json:"local_order_id"`
	RestaurantID uuid.UUID   `json:"restaurant_id"`
	RemoteID     string      `json:"remote_id,omitempty"`
	Status       OrderStatus `json:"status"`
	Timestamp    time.Time   `json:"timestamp"`
}

const (
	EventOrderCreated  = "order_created"
	EventOrderUpdated  = "order_status_changed"
	EventOrderSynced   = "order_synced"
	EventOrderConflict = "order_conflict"
)
