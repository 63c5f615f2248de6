package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxLocalIDAttempts = 5
	localIDLayout      = "20060102150405"
)

var DefaultTaxRate = decimal.RequireFromString("0.08")

type CreateOrderRequest struct {
	Items                []domain.OrderItem `json:"items"`
	TableID              string             `json:"table_id,omitempty"`
	CustomerID           string             `json:"customer_id,omitempty"`
	SpecialInstructions  string             `json:"special_instructions,omitempty"`
	EstimatedPrepMinutes *int               `json:"estimated_preparation_time,omitempty"`
}

type PaymentDetails struct {
	Gateway       domain.Gateway `json:"gateway"`
	Currency      string         `json:"currency,omitempty"`
	CustomerPhone string         `json:"customer_phone,omitempty"`
	CustomerEmail string         `json:"customer_email,omitempty"`
}

type OrderCreationResult struct {
	OrderID       uuid.UUID            `json:"order_id"`
	LocalOrderID  string               `json:"local_order_id"`
	Status        domain.OrderStatus   `json:"status"`
	Subtotal      decimal.Decimal      `json:"subtotal"`
	TaxAmount     decimal.Decimal      `json:"tax_amount"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	OTPCode       string               `json:"otp_code"`
	OTPExpiresAt  time.Time            `json:"otp_expires_at"`
	PaymentID     *uuid.UUID           `json:"payment_id,omitempty"`
	PaymentStatus domain.PaymentStatus `json:"payment_status,omitempty"`
	PaymentError  string               `json:"payment_error,omitempty"`
}

type OrderDetails struct {
	Order         *domain.Order         `json:"order"`
	ConflictState *domain.ConflictState `json:"conflict_state,omitempty"`
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// RecomputeTotals rounds half-up to cents after each stage: subtotal, then
// tax on the rounded subtotal, then their sum.
func RecomputeTotals(items []domain.OrderItem, rate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		line := item.Price.Mul(qty)
		for _, modifier := range item.Modifiers {
			line = line.Add(modifier.Price.Mul(qty))
		}
		subtotal = subtotal.Add(line)
	}
	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(rate).Round(2)
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal.Add(tax).Round(2)}
}

func validateItems(items []domain.OrderItem) error {
	if len(items) == 0 {
		return &domain.ValidationError{Field: "items", Reason: "order must contain at least one item"}
	}
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ID) == "" {
			return &domain.ValidationError{Field: field + ".id", Reason: "item id is required"}
		}
		if item.Price.IsNegative() {
			return &domain.ValidationError{Field: field + ".price", Reason: "price cannot be negative"}
		}
		if item.Quantity <= 0 {
			return &domain.ValidationError{Field: field + ".quantity", Reason: "quantity must be a positive integer"}
		}
		for j, modifier := range item.Modifiers {
			if modifier.Price.IsNegative() {
				return &domain.ValidationError{Field: fmt.Sprintf("%s.modifiers[%d].price", field, j), Reason: "modifier price cannot be negative"}
			}
		}
	}
	return nil
}

// LocalOrderID formats the human-readable order label.
func LocalOrderID(restaurantName string, at time.Time, seq int) string {
	var prefix []rune
	for _, r := range restaurantName {
		if unicode.IsLetter(r) {
			prefix = append(prefix, unicode.ToUpper(r))
			if len(prefix) == 3 {
				break
			}
		}
	}
	p := string(prefix)
	if len(prefix) < 3 {
		p = "ORD"
	}
	return fmt.Sprintf("%s-%s-%04d", p, at.Format(localIDLayout), seq)
}

type OTPIssuer interface {
	Issue(orderID uuid.UUID, now time.Time, ttl time.Duration) (*domain.OTP, error)
}

type PaymentInitiator interface {
	Initiate(ctx context.Context, req domain.PaymentRequest) (*domain.PaymentAttempt, error)
}

type OrderService struct {
	repo      OrderRepository
	otps      OTPIssuer
	activity  ActivityLogger
	publisher EventPublisher
	logger    *slog.Logger

	Payments PaymentInitiator
	TaxRate  decimal.Decimal
	Currency string
	OTPTTL   time.Duration
	Now      func() time.Time
}

func NewOrderService(repo OrderRepository, otps OTPIssuer, activity ActivityLogger, publisher EventPublisher, logger *slog.Logger) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		repo:      repo,
		otps:      otps,
		activity:  activity,
		publisher: publisher,
		logger:    logger.With("module", "orders"),
		TaxRate:   DefaultTaxRate,
		Currency:  "UGX",
		OTPTTL:    DefaultOTPTTL,
		Now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, restaurantID uuid.UUID, req CreateOrderRequest) (*OrderCreationResult, error) {
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	restaurant, err := s.repo.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.IsActive {
		return nil, &domain.NotFoundError{Resource: "restaurant", Key: "id", Value: restaurantID.String()}
	}

	rate := s.TaxRate
	if restaurant.TaxRate != nil {
		rate = *restaurant.TaxRate
	}
	totals := RecomputeTotals(req.Items, rate)

	now := s.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	count, err := s.repo.CountOrdersSince(ctx, restaurantID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("count today's orders: %w", err)
	}

	var bundle *domain.OrderBundle
	for attempt := 0; attempt < maxLocalIDAttempts; attempt++ {
		bundle, err = s.buildBundle(restaurant, req, totals, now, count+1+attempt)
		if err != nil {
			return nil, err
		}
		err = s.repo.CreateOrder(ctx, bundle)
		if !domain.IsIntegrity(err) {
			break
		}
		s.logger.Warn("local_order_id_taken", "local_order_id", bundle.Order.LocalOrderID)
	}
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	order := bundle.Order
	s.logger.Info("order_created", "order_id", order.ID, "local_order_id", order.LocalOrderID, "total", order.TotalAmount)
	recordActivity(ctx, s.activity, s.logger, &restaurantID, domain.LevelInfo, "orders", "order_created", map[string]any{
		"order_id":       order.ID,
		"local_order_id": order.LocalOrderID,
		"total_amount":   order.TotalAmount.StringFixed(2),
	})
	s.publish(ctx, domain.EventOrderCreated, order)

	return &OrderCreationResult{
		OrderID:      order.ID,
		LocalOrderID: order.LocalOrderID,
		Status:       order.Status,
		Subtotal:     order.Subtotal,
		TaxAmount:    order.TaxAmount,
		TotalAmount:  order.TotalAmount,
		OTPCode:      bundle.OTP.Code,
		OTPExpiresAt: bundle.OTP.ExpiresAt,
	}, nil
}

func (s *OrderService) buildBundle(restaurant *domain.Restaurant, req CreateOrderRequest, totals Totals, now time.Time, seq int) (*domain.OrderBundle, error) {
	order := &domain.Order{
		ID:                   uuid.New(),
		RestaurantID:         restaurant.ID,
		LocalOrderID:         LocalOrderID(restaurant.Name, now, seq),
		Items:                req.Items,
		Subtotal:             totals.Subtotal,
		TaxAmount:            totals.Tax,
		TotalAmount:          totals.Total,
		Status:               domain.StatusPending,
		SyncStatus:           domain.SyncPending,
		TableID:              req.TableID,
		CustomerID:           req.CustomerID,
		SpecialInstructions:  req.SpecialInstructions,
		EstimatedPrepMinutes: req.EstimatedPrepMinutes,
		SyncVersion:          1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	state := domain.NewConflictState(order.ID, now)
	otp, err := s.otps.Issue(order.ID, now, s.OTPTTL)
	if err != nil {
		return nil, fmt.Errorf("issue otp: %w", err)
	}
	entry, err := domain.NewCreateOrderEntry(order)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = now
	return &domain.OrderBundle{Order: order, State: &state, OTP: otp, Entry: entry}, nil
}

// CreateOrderWithPayment creates the order and charges for it. A declined
// payment leaves the order in payment_failed; the order itself is kept.
func (s *OrderService) CreateOrderWithPayment(ctx context.Context, restaurantID uuid.UUID, req CreateOrderRequest, payment PaymentDetails) (*OrderCreationResult, error) {
	if !payment.Gateway.Valid() {
		return nil, &domain.ValidationError{Field: "gateway", Reason: fmt.Sprintf("unsupported gateway %q", payment.Gateway)}
	}
	if s.Payments == nil {
		return nil, errors.New("payments are not configured")
	}

	result, err := s.CreateOrder(ctx, restaurantID, req)
	if err != nil {
		return nil, err
	}

	currency := payment.Currency
	if currency == "" {
		currency = s.Currency
	}
	attempt, err := s.Payments.Initiate(ctx, domain.PaymentRequest{
		OrderID:       result.OrderID,
		RestaurantID:  restaurantID,
		Amount:        result.TotalAmount,
		Currency:      currency,
		Gateway:       payment.Gateway,
		Reference:     result.LocalOrderID,
		CustomerPhone: payment.CustomerPhone,
		CustomerEmail: payment.CustomerEmail,
	})
	if err != nil {
		result.PaymentStatus = domain.PaymentFailed
		result.PaymentError = err.Error()
		if order, markErr := s.MarkPaymentFailed(ctx, result.OrderID, err.Error()); markErr == nil && order != nil {
			result.Status = order.Status
		}
		return result, nil
	}

	result.PaymentID = &attempt.ID
	result.PaymentStatus = attempt.Status
	switch attempt.Status {
	case domain.PaymentCompleted:
		if err := s.ConfirmPaid(ctx, result.OrderID, attempt.GatewayReference); err != nil {
			return nil, err
		}
		result.Status = domain.StatusConfirmed
	case domain.PaymentFailed:
		result.PaymentError = attempt.ErrorMessage
		if _, err := s.MarkPaymentFailed(ctx, result.OrderID, attempt.ErrorMessage); err != nil {
			return nil, err
		}
		result.Status = domain.StatusPaymentFailed
	}
	return result, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.OrderStatus, notes string) (*domain.Order, error) {
	if !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	previous := order.Status
	if !previous.CanTransition(status) {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot transition from %s to %s", previous, status)}
	}

	now := s.Now()
	next := *order
	next.Status = status
	next.UpdatedAt = now
	switch status {
	case domain.StatusPreparing:
		if next.PrepStartedAt == nil {
			next.PrepStartedAt = &now
		}
	case domain.StatusCompleted:
		if next.CompletedAt == nil {
			next.CompletedAt = &now
			if next.PrepStartedAt != nil {
				minutes := int(now.Sub(*next.PrepStartedAt).Minutes())
				next.ActualPrepMinutes = &minutes
			}
		}
	}

	entry, err := domain.NewUpdateOrderEntry(&next, previous, notes, now)
	if err != nil {
		return nil, err
	}
	entry.CreatedAt = now
	if err := s.repo.TransitionOrder(ctx, &next, previous, entry); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("order is no longer %s", previous)}
		}
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}

	s.logger.Info("order_status_changed", "order_id", orderID, "from", previous, "to", status)
	recordActivity(ctx, s.activity, s.logger, &next.RestaurantID, domain.LevelInfo, "orders", "status_changed", map[string]any{
		"order_id": orderID,
		"from":     previous,
		"to":       status,
		"notes":    notes,
	})
	s.publish(ctx, domain.EventOrderUpdated, &next)
	return &next, nil
}

func (s *OrderService) CancelOrder(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Order, error) {
	return s.UpdateStatus(ctx, orderID, domain.StatusCancelled, reason)
}

// ConfirmPaid records the payment reference and confirms a pending order.
func (s *OrderService) ConfirmPaid(ctx context.Context, orderID uuid.UUID, reference string) error {
	if reference != "" {
		if err := s.repo.SetPaymentReference(ctx, orderID, reference); err != nil {
			return err
		}
	}
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != domain.StatusPending {
		return nil
	}
	_, err = s.UpdateStatus(ctx, orderID, domain.StatusConfirmed, "payment completed")
	return err
}

// MarkPaymentFailed moves a pending order to payment_failed. Orders that
// already left pending are returned untouched.
func (s *OrderService) MarkPaymentFailed(ctx context.Context, orderID uuid.UUID, reason string) (*domain.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != domain.StatusPending {
		return order, nil
	}
	return s.UpdateStatus(ctx, orderID, domain.StatusPaymentFailed, reason)
}

func (s *OrderService) GetOrderDetails(ctx context.Context, orderID uuid.UUID) (*OrderDetails, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	details := &OrderDetails{Order: order}
	state, err := s.repo.GetConflictState(ctx, orderID)
	switch {
	case err == nil:
		details.ConflictState = state
	case !domain.IsNotFound(err):
		return nil, err
	}
	return details, nil
}

func (s *OrderService) ListOrders(ctx context.Context, restaurantID uuid.UUID, status domain.OrderStatus) ([]domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, &domain.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}
	return s.repo.ListOrders(ctx, restaurantID, status)
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *domain.Order) {
	publishOrderEvent(ctx, s.publisher, s.logger, eventType, order, s.Now())
}

var _ OrderServiceInterface = (*OrderService)(nil)
