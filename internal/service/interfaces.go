package service

import (
	"context"
	"encoding/json"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/remote"
	"dineswift-local/internal/storage"

	"github.com/google/uuid"
)

type OrderRepository interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	CountOrdersSince(ctx context.Context, restaurantID uuid.UUID, since time.Time) (int, error)
	CreateOrder(ctx context.Context, bundle *domain.OrderBundle) error
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, restaurantID uuid.UUID, status domain.OrderStatus) ([]domain.Order, error)
	TransitionOrder(ctx context.Context, order *domain.Order, from domain.OrderStatus, entry *domain.SyncEntry) error
	GetConflictState(ctx context.Context, orderID uuid.UUID) (*domain.ConflictState, error)
	SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error
}

type SyncRepository interface {
	Enqueue(ctx context.Context, entry *domain.SyncEntry) error
	GetEntryByIdempotencyKey(ctx context.Context, key string) (*domain.SyncEntry, error)
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error)
	ClaimRetryable(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error)
	ClaimConflicts(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error)
	Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	CompleteEntry(ctx context.Context, id uuid.UUID, remoteID string) error
	CancelEntry(ctx context.Context, id uuid.UUID, reason string) error
	SaveRetry(ctx context.Context, entry *domain.SyncEntry) error
	MarkConflict(ctx context.Context, id uuid.UUID, data *domain.ConflictData, reason string) error
	ReclaimStuck(ctx context.Context, before time.Time) (int64, error)
	QueueStats(ctx context.Context) (map[domain.EntryStatus]int, error)
	CountExhausted(ctx context.Context) (int, error)
	ListEntries(ctx context.Context, status domain.EntryStatus, limit int) ([]domain.SyncEntry, error)
	RequeueExhausted(ctx context.Context, now time.Time) (int64, error)
}

// OrderSyncRepository is the order bookkeeping the sync manager writes.
type OrderSyncRepository interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	MarkOrderSynced(ctx context.Context, orderID uuid.UUID, remoteID string, syncedAt time.Time) error
	RecordSyncFailure(ctx context.Context, orderID uuid.UUID, message string, at time.Time) error
	MarkOrderConflict(ctx context.Context, orderID uuid.UUID) error
	ApplyResolvedOrder(ctx context.Context, order *domain.Order, remoteWon bool) error
}

type MenuRepository interface {
	GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error)
	ListActiveRestaurants(ctx context.Context) ([]domain.Restaurant, error)
	GetActiveSnapshot(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, error)
	PutIfChanged(ctx context.Context, restaurantID uuid.UUID, payload json.RawMessage, now time.Time) (*domain.MenuSnapshot, bool, error)
}

type MenuCache interface {
	Get(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, bool, error)
	Set(ctx context.Context, snapshot *domain.MenuSnapshot) error
	Delete(ctx context.Context, restaurantID uuid.UUID) error
}

type OTPRepository interface {
	ReplaceActive(ctx context.Context, otp *domain.OTP) error
	GetActiveOTP(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error)
	FindActiveOTP(ctx context.Context, orderID uuid.UUID, code string) (*domain.OTP, error)
	FindOTPByCode(ctx context.Context, orderID uuid.UUID, code string) (*domain.OTP, error)
	MarkOTPUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkOTPExpired(ctx context.Context, id uuid.UUID) error
	RecordFailedAttempt(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, p *domain.PaymentAttempt) error
	// UpdatePayment writes p only while the stored status is still from;
	// otherwise it returns domain.ErrPaymentChanged.
	UpdatePayment(ctx context.Context, p *domain.PaymentAttempt, from domain.PaymentStatus) error
	GetPayment(ctx context.Context, id uuid.UUID) (*domain.PaymentAttempt, error)
	GetPaymentByIdempotencyKey(ctx context.Context, key string) (*domain.PaymentAttempt, error)
	GetPaymentByGatewayReference(ctx context.Context, reference string) (*domain.PaymentAttempt, error)
	GetLatestPaymentForOrder(ctx context.Context, orderID uuid.UUID) (*domain.PaymentAttempt, error)
	ListStaleProcessing(ctx context.Context, before time.Time, limit int) ([]domain.PaymentAttempt, error)
}

type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *domain.ActivityLog) error
}

type MaintenanceRepository interface {
	ActivityLogger
	PurgeActivity(ctx context.Context, before time.Time) (int64, error)
	SaveHealthCheck(ctx context.Context, check *domain.HealthCheck) error
	ListHealthChecks(ctx context.Context) ([]domain.HealthCheck, error)
}

// RemoteStore is the authoritative store this node reconciles against.
type RemoteStore interface {
	UpsertOrder(ctx context.Context, order domain.RemoteOrder, key string) (string, error)
	UpdateOrder(ctx context.Context, remoteID string, delta domain.OrderDelta) error
	GetOrder(ctx context.Context, remoteID string) (*domain.RemoteOrder, error)
	GetMenu(ctx context.Context, restaurantRef string) (json.RawMessage, error)
}

type PaymentGateway interface {
	ValidateTransaction(ctx context.Context, req domain.GatewayRequest) domain.GatewayResult
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, restaurantID uuid.UUID, req CreateOrderRequest) (*OrderCreationResult, error)
	CreateOrderWithPayment(ctx context.Context, restaurantID uuid.UUID, req CreateOrderRequest, payment PaymentDetails) (*OrderCreationResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, notes string) (*domain.Order, error)
	CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Order, error)
	GetOrderDetails(ctx context.Context, orderID uuid.UUID) (*OrderDetails, error)
	ListOrders(ctx context.Context, restaurantID uuid.UUID, status domain.OrderStatus) ([]domain.Order, error)
}

type OTPServiceInterface interface {
	Generate(ctx context.Context, orderID uuid.UUID, ttl time.Duration) (*domain.OTP, error)
	Verify(ctx context.Context, orderID uuid.UUID, code string) VerifyResult
	Active(ctx context.Context, orderID uuid.UUID) (*domain.OTP, error)
	PickupQR(ctx context.Context, orderID uuid.UUID) ([]byte, error)
}

type MenuServiceInterface interface {
	Get(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, error)
	Sync(ctx context.Context, restaurantID uuid.UUID) (bool, error)
	Invalidate(ctx context.Context, restaurantID uuid.UUID) error
	GetMenuVersion(ctx context.Context, restaurantID uuid.UUID) (*MenuVersion, error)
}

type PaymentServiceInterface interface {
	Initiate(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentAttempt, error)
	GetStatus(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentAttempt, error)
	GetOrderPayment(ctx context.Context, orderID uuid.UUID) (*domain.PaymentAttempt, error)
	HandleCompletion(ctx context.Context, completion domain.PaymentCompletion) (*domain.PaymentAttempt, error)
}

type SyncServiceInterface interface {
	ProcessDueEntries(ctx context.Context) (int, error)
	Stats(ctx context.Context) (map[domain.EntryStatus]int, error)
	ListQueue(ctx context.Context, status domain.EntryStatus, limit int) ([]domain.SyncEntry, error)
	RetryFailed(ctx context.Context) (*RetryReport, error)
	ForceSync(ctx context.Context, restaurantID uuid.UUID) (int, error)
}

var (
	_ OrderRepository       = (*storage.PostgresRepository)(nil)
	_ SyncRepository        = (*storage.PostgresRepository)(nil)
	_ OrderSyncRepository   = (*storage.PostgresRepository)(nil)
	_ MenuRepository        = (*storage.PostgresRepository)(nil)
	_ OTPRepository         = (*storage.PostgresRepository)(nil)
	_ PaymentRepository     = (*storage.PostgresRepository)(nil)
	_ MaintenanceRepository = (*storage.PostgresRepository)(nil)
	_ MenuCache             = (*storage.RedisMenuCache)(nil)
	_ EventPublisher        = (*storage.KafkaPublisher)(nil)
	_ EventPublisher        = (*storage.RabbitPublisher)(nil)
	_ RemoteStore           = (*remote.PostgresStore)(nil)
	_ PaymentGateway        = (*remote.HTTPGateway)(nil)
)
