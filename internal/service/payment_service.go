package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dineswift-local/internal/checksum"
	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const (
	DefaultPaymentStaleAfter = 10 * time.Minute
	DefaultGatewayRetries    = 3
	stalePaymentBatch        = 50
)

// OrderPaymentHook lets payment outcomes move the owning order.
type OrderPaymentHook interface {
	ConfirmPaid(ctx context.Context, orderID uuid.UUID, reference string) error
	MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Order, error)
}

type PaymentService struct {
	repo     PaymentRepository
	gateway  PaymentGateway
	activity ActivityLogger
	logger   *slog.Logger

	Orders         OrderPaymentHook
	Currency       string
	Timeout        time.Duration
	StaleAfter     time.Duration
	GatewayRetries int
	Now            func() time.Time
}

func NewPaymentService(repo PaymentRepository, gateway PaymentGateway, orders OrderPaymentHook, activity ActivityLogger, logger *slog.Logger) *PaymentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentService{
		repo:           repo,
		gateway:        gateway,
		activity:       activity,
		logger:         logger.With("module", "payments"),
		Orders:         orders,
		Currency:       "UGX",
		Timeout:        DefaultRemoteTimeout,
		StaleAfter:     DefaultPaymentStaleAfter,
		GatewayRetries: DefaultGatewayRetries,
		Now:            func() time.Time { return time.Now().UTC() },
	}
}

func validatePayment(req domain.PaymentRequest) error {
	if !req.Amount.IsPositive() {
		return &domain.ValidationError{Field: "amount", Reason: "amount must be positive"}
	}
	if !req.Amount.Equal(req.Amount.Truncate(2)) {
		return &domain.ValidationError{Field: "amount", Reason: "amount has more than two decimal places"}
	}
	if !req.Gateway.Valid() {
		return &domain.ValidationError{Field: "gateway", Reason: fmt.Sprintf("unsupported gateway %q", req.Gateway)}
	}
	if req.Reference == "" {
		return &domain.ValidationError{Field: "reference", Reason: "reference is required"}
	}
	if req.Gateway == domain.GatewayMomo && req.CustomerPhone == "" {
		return &domain.ValidationError{Field: "customer_phone", Reason: "mobile money requires a phone number"}
	}
	return nil
}

// Initiate charges once per (amount, payer, reference). A repeated request
// returns the stored attempt whatever its status and never reaches the
// gateway again.
func (s *PaymentService) Initiate(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentAttempt, error) {
	if err := validatePayment(req); err != nil {
		return nil, err
	}
	key := checksum.IdempotencyKey(req.Amount, req.Payer(), req.Reference)

	existing, err := s.repo.GetPaymentByIdempotencyKey(ctx, key)
	if err == nil {
		s.logger.Info("payment_replayed", "payment_id", existing.ID, "status", existing.Status)
		return existing, nil
	}
	if !domain.IsNotFound(err) {
		return nil, err
	}

	now := s.Now()
	currency := req.Currency
	if currency == "" {
		currency = s.Currency
	}
	attempt := &domain.PaymentAttempt{
		ID:             uuid.New(),
		OrderID:        req.OrderID,
		RestaurantID:   req.RestaurantID,
		Amount:         req.Amount.Round(2),
		Currency:       currency,
		Gateway:        req.Gateway,
		Status:         domain.PaymentPending,
		IdempotencyKey: key,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.CreatePayment(ctx, attempt); err != nil {
		if domain.IsIntegrity(err) {
			return s.repo.GetPaymentByIdempotencyKey(ctx, key)
		}
		return nil, err
	}

	attempt.Status = domain.PaymentProcessing
	attempt.UpdatedAt = s.Now()
	if err := s.repo.UpdatePayment(ctx, attempt, domain.PaymentPending); err != nil {
		return nil, err
	}

	if attempt.Gateway == domain.GatewayCash {
		s.apply(attempt, domain.GatewayResult{Accepted: true, Reference: "CASH-" + attempt.ID.String()})
	} else {
		s.apply(attempt, s.validate(ctx, attempt))
	}
	if err := s.repo.UpdatePayment(ctx, attempt, domain.PaymentProcessing); err != nil {
		if !errors.Is(err, domain.ErrPaymentChanged) {
			return nil, err
		}
		// A completion notification settled the attempt while the gateway
		// call was in flight; it wins.
		s.logger.Info("payment_settled_concurrently", "payment_id", attempt.ID)
		return s.repo.GetPayment(ctx, attempt.ID)
	}

	s.logger.Info("payment_initiated", "payment_id", attempt.ID, "order_id", attempt.OrderID, "status", attempt.Status)
	recordActivity(ctx, s.activity, s.logger, &attempt.RestaurantID, activityLevel(attempt.Status), "payments", "payment_initiated", map[string]any{
		"payment_id": attempt.ID,
		"order_id":   attempt.OrderID,
		"gateway":    attempt.Gateway,
		"status":     attempt.Status,
	})
	return attempt, nil
}

func (s *PaymentService) validate(ctx context.Context, attempt *domain.PaymentAttempt) domain.GatewayResult {
	callCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return s.gateway.ValidateTransaction(callCtx, domain.GatewayRequest{
		Reference: attempt.IdempotencyKey,
		Amount:    attempt.Amount,
		Currency:  attempt.Currency,
		Gateway:   attempt.Gateway,
		Phone:     attempt.CustomerPhone,
		Email:     attempt.CustomerEmail,
	})
}

// apply folds a gateway result into the attempt. Transient failures keep it
// in processing for the monitor until the retry budget is spent.
func (s *PaymentService) apply(attempt *domain.PaymentAttempt, result domain.GatewayResult) {
	now := s.Now()
	attempt.UpdatedAt = now
	if len(result.Response) > 0 {
		attempt.ResponseData = result.Response
	}
	if result.Accepted {
		attempt.Status = domain.PaymentCompleted
		attempt.GatewayReference = result.Reference
		attempt.ErrorMessage = ""
		attempt.CompletedAt = &now
		return
	}

	attempt.RetryCount++
	if result.Err != nil {
		attempt.ErrorMessage = result.Err.Error()
	}
	if result.Reference != "" {
		attempt.GatewayReference = result.Reference
	}
	if result.Retryable() && attempt.RetryCount < s.GatewayRetries {
		attempt.Status = domain.PaymentProcessing
		return
	}
	attempt.Status = domain.PaymentFailed
}

func (s *PaymentService) GetStatus(ctx context.Context, paymentID uuid.UUID) (*domain.PaymentAttempt, error) {
	return s.repo.GetPayment(ctx, paymentID)
}

// GetOrderPayment returns the latest attempt made for the order.
func (s *PaymentService) GetOrderPayment(ctx context.Context, orderID uuid.UUID) (*domain.PaymentAttempt, error) {
	return s.repo.GetLatestPaymentForOrder(ctx, orderID)
}

func (s *PaymentService) lookup(ctx context.Context, c domain.PaymentCompletion) (*domain.PaymentAttempt, error) {
	if c.IdempotencyKey != "" {
		attempt, err := s.repo.GetPaymentByIdempotencyKey(ctx, c.IdempotencyKey)
		if err == nil || !domain.IsNotFound(err) || c.TransactionID == "" {
			return attempt, err
		}
	}
	if c.TransactionID == "" {
		return nil, &domain.ValidationError{Field: "transaction_id", Reason: "idempotency key or transaction id is required"}
	}
	return s.repo.GetPaymentByGatewayReference(ctx, c.TransactionID)
}

func completionAllowed(from, to domain.PaymentStatus) bool {
	switch from {
	case domain.PaymentPending, domain.PaymentProcessing:
		return to == domain.PaymentCompleted || to == domain.PaymentFailed
	case domain.PaymentCompleted:
		return to == domain.PaymentRefunded
	}
	return false
}

// HandleCompletion applies an asynchronous gateway notification. Replaying a
// notification that was already applied is a no-op.
func (s *PaymentService) HandleCompletion(ctx context.Context, c domain.PaymentCompletion) (*domain.PaymentAttempt, error) {
	switch c.Status {
	case domain.PaymentCompleted, domain.PaymentFailed, domain.PaymentRefunded:
	default:
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unsupported completion status %q", c.Status)}
	}

	attempt, err := s.lookup(ctx, c)
	if err != nil {
		return nil, err
	}
	if attempt.Status == c.Status {
		return attempt, nil
	}
	if !completionAllowed(attempt.Status, c.Status) {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot move payment from %s to %s", attempt.Status, c.Status)}
	}

	now := s.Now()
	from := attempt.Status
	attempt.Status = c.Status
	attempt.UpdatedAt = now
	if c.TransactionID != "" {
		attempt.GatewayReference = c.TransactionID
	}
	if len(c.Data) > 0 {
		attempt.ResponseData = c.Data
	}
	switch c.Status {
	case domain.PaymentCompleted:
		attempt.CompletedAt = &now
		attempt.ErrorMessage = ""
	case domain.PaymentFailed:
		attempt.ErrorMessage = c.Message
	}
	if err := s.repo.UpdatePayment(ctx, attempt, from); err != nil {
		if !errors.Is(err, domain.ErrPaymentChanged) {
			return nil, err
		}
		current, getErr := s.repo.GetPayment(ctx, attempt.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.Status == c.Status {
			return current, nil
		}
		return nil, fmt.Errorf("apply %s completion to payment %s: %w", c.Status, attempt.ID, err)
	}

	s.logger.Info("payment_completion_applied", "payment_id", attempt.ID, "status", attempt.Status)
	recordActivity(ctx, s.activity, s.logger, &attempt.RestaurantID, activityLevel(attempt.Status), "payments", "payment_completion", map[string]any{
		"payment_id":     attempt.ID,
		"status":         attempt.Status,
		"transaction_id": c.TransactionID,
	})
	s.notifyOrder(ctx, attempt)
	return attempt, nil
}

func (s *PaymentService) notifyOrder(ctx context.Context, attempt *domain.PaymentAttempt) {
	if s.Orders == nil || attempt.OrderID == uuid.Nil {
		return
	}
	var err error
	switch attempt.Status {
	case domain.PaymentCompleted:
		err = s.Orders.ConfirmPaid(ctx, attempt.OrderID, attempt.GatewayReference)
	case domain.PaymentFailed:
		_, err = s.Orders.MarkPaymentFailed(ctx, attempt.OrderID, attempt.ErrorMessage)
	default:
		return
	}
	if err != nil {
		s.logger.Error("order_payment_update_failed", "order_id", attempt.OrderID, "payment_id", attempt.ID, "error", err)
	}
}

// MonitorPending re-validates attempts stuck in processing longer than
// StaleAfter.
func (s *PaymentService) MonitorPending(ctx context.Context) (int, error) {
	stale, err := s.repo.ListStaleProcessing(ctx, s.Now().Add(-s.StaleAfter), stalePaymentBatch)
	if err != nil {
		return 0, err
	}
	resolved := 0
	for i := range stale {
		attempt := &stale[i]
		s.apply(attempt, s.validate(ctx, attempt))
		if err := s.repo.UpdatePayment(ctx, attempt, domain.PaymentProcessing); err != nil {
			if errors.Is(err, domain.ErrPaymentChanged) {
				s.logger.Info("payment_settled_concurrently", "payment_id", attempt.ID)
				continue
			}
			s.logger.Error("payment_monitor_update_failed", "payment_id", attempt.ID, "error", err)
			continue
		}
		if attempt.IsTerminal() {
			resolved++
			s.notifyOrder(ctx, attempt)
		}
	}
	if len(stale) > 0 {
		s.logger.Info("payment_monitor", "checked", len(stale), "resolved", resolved)
	}
	return resolved, nil
}

func activityLevel(status domain.PaymentStatus) domain.LogLevel {
	if status == domain.PaymentFailed {
		return domain.LevelWarning
	}
	return domain.LevelInfo
}

var _ PaymentServiceInterface = (*PaymentService)(nil)
