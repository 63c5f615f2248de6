package domain

type OrderStatus string

const (
	StatusPending       OrderStatus = "pending"
	StatusConfirmed     OrderStatus = "confirmed"
	StatusPreparing     OrderStatus = "preparing"
	StatusReady         OrderStatus = "ready"
	StatusCompleted     OrderStatus = "completed"
	StatusCancelled     OrderStatus = "cancelled"
	StatusPaymentFailed OrderStatus = "payment_failed"
)

var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:       {StatusConfirmed, StatusCancelled, StatusPaymentFailed},
	StatusConfirmed:     {StatusPreparing, StatusCancelled},
	StatusPreparing:     {StatusReady, StatusCancelled},
	StatusReady:         {StatusCompleted},
	StatusPaymentFailed: {StatusCancelled},
	StatusCompleted:     {},
	StatusCancelled:     {},
}

func (s OrderStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether the order state machine has an edge from s to next.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

type SyncStatus string

const (
	SyncPending  SyncStatus = "pending_sync"
	SyncSyncing  SyncStatus = "syncing"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "sync_failed"
	SyncConflict SyncStatus = "conflict"
)
