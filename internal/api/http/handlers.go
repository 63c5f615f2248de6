package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"dineswift-local/internal/domain"
	"dineswift-local/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type HealthReporter interface {
	LastChecks(ctx context.Context) ([]domain.HealthCheck, error)
}

type Handler struct {
	Orders   service.OrderServiceInterface
	OTPs     service.OTPServiceInterface
	Menus    service.MenuServiceInterface
	Payments service.PaymentServiceInterface
	Sync     service.SyncServiceInterface
	Health   HealthReporter
}

func NewHandler(orders service.OrderServiceInterface, otps service.OTPServiceInterface, menus service.MenuServiceInterface, payments service.PaymentServiceInterface, sync service.SyncServiceInterface, health HealthReporter) *Handler {
	return &Handler{
		Orders:   orders,
		OTPs:     otps,
		Menus:    menus,
		Payments: payments,
		Sync:     sync,
		Health:   health,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.HandleFunc("/api/restaurants/{restaurantId}/orders", h.createOrder).Methods("POST")
	r.HandleFunc("/api/restaurants/{restaurantId}/orders", h.listOrders).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/menu", h.getMenu).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/menu/version", h.getMenuVersion).Methods("GET")
	r.HandleFunc("/api/restaurants/{restaurantId}/menu/sync", h.syncMenu).Methods("POST")

	r.HandleFunc("/api/orders/{id}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{id}/status", h.updateStatus).Methods("PUT")
	r.HandleFunc("/api/orders/{id}/cancel", h.cancelOrder).Methods("POST")
	r.HandleFunc("/api/orders/{id}/verify", h.verifyPickup).Methods("POST")
	r.HandleFunc("/api/orders/{id}/qrcode", h.getPickupQRCode).Methods("GET")
	r.HandleFunc("/api/orders/{id}/otp", h.regenerateOTP).Methods("POST")
	r.HandleFunc("/api/orders/{id}/otp", h.getActiveOTP).Methods("GET")
	r.HandleFunc("/api/orders/{id}/payment", h.getOrderPayment).Methods("GET")

	r.HandleFunc("/api/payments", h.initiatePayment).Methods("POST")
	r.HandleFunc("/api/payments/webhook", h.paymentWebhook).Methods("POST")
	r.HandleFunc("/api/payments/{id}", h.getPayment).Methods("GET")

	r.HandleFunc("/api/sync/stats", h.syncStats).Methods("GET")
	r.HandleFunc("/api/sync/queue", h.syncQueue).Methods("GET")
	r.HandleFunc("/api/sync/retry-failed", h.retryFailed).Methods("POST")
	r.HandleFunc("/api/sync/force", h.forceSync).Methods("POST")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		validation *domain.ValidationError
		transient  *domain.TransientRemoteError
		terminal   *domain.TerminalRemoteError
	)
	switch {
	case errors.As(err, &validation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrOTPInvalid), errors.Is(err, domain.ErrOTPExpired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case domain.IsNotFound(err):
		http.Error(w, err.Error(), http.StatusNotFound)
	case domain.IsConflict(err), domain.IsIntegrity(err), errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOTPUsed), errors.Is(err, domain.ErrPaymentChanged):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &transient), errors.As(err, &terminal), errors.Is(err, domain.ErrRemoteUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		http.Error(w, "Invalid "+name, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "localnode",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if h.Health != nil {
		checks, err := h.Health.LastChecks(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		for _, check := range checks {
			if !check.IsHealthy {
				response["status"] = "degraded"
			}
		}
		response["components"] = checks
	}
	writeJSON(w, http.StatusOK, response)
}

type createOrderBody struct {
	service.CreateOrderRequest
	Payment *service.PaymentDetails `json:"payment,omitempty"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathUUID(w, r, "restaurantId")
	if !ok {
		return
	}
	var body createOrderBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}

	var (
		result *service.OrderCreationResult
		err    error
	)
	if body.Payment != nil {
		result, err = h.Orders.CreateOrderWithPayment(r.Context(), restaurantID, body.CreateOrderRequest, *body.Payment)
	} else {
		result, err = h.Orders.CreateOrder(r.Context(), restaurantID, body.CreateOrderRequest)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathUUID(w, r, "restaurantId")
	if !ok {
		return
	}
	orders, err := h.Orders.ListOrders(r.Context(), restaurantID, domain.OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.Orders.GetOrderDetails(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Status domain.OrderStatus `json:"status"`
		Notes  string             `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	order, err := h.Orders.UpdateStatus(r.Context(), orderID, body.Status, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	order, err := h.Orders.CancelOrder(r.Context(), orderID, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) verifyPickup(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	result := h.OTPs.Verify(r.Context(), orderID, body.Code)
	if !result.Valid {
		writeJSON(w, http.StatusBadRequest, result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) getPickupQRCode(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	png, err := h.OTPs.PickupQR(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// regenerateOTP replaces the order's pickup code, revoking the previous one.
func (h *Handler) regenerateOTP(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	details, err := h.Orders.GetOrderDetails(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if details.Order.Status.IsTerminal() {
		http.Error(w, "order is "+string(details.Order.Status), http.StatusConflict)
		return
	}
	otp, err := h.OTPs.Generate(r.Context(), orderID, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, otp)
}

func (h *Handler) getActiveOTP(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	otp, err := h.OTPs.Active(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, otp)
}

func (h *Handler) getMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathUUID(w, r, "restaurantId")
	if !ok {
		return
	}
	snapshot, err := h.Menus.Get(r.Context(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (h *Handler) getMenuVersion(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathUUID(w, r, "restaurantId")
	if !ok {
		return
	}
	version, err := h.Menus.GetMenuVersion(r.Context(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, version)
}

func (h *Handler) syncMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID, ok := pathUUID(w, r, "restaurantId")
	if !ok {
		return
	}
	changed, err := h.Menus.Sync(r.Context(), restaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"changed": changed})
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	attempt, err := h.Payments.Initiate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	attempt, err := h.Payments.GetStatus(r.Context(), paymentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) getOrderPayment(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	attempt, err := h.Payments.GetOrderPayment(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var completion domain.PaymentCompletion
	if err := json.NewDecoder(r.Body).Decode(&completion); err != nil {
		http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
		return
	}
	attempt, err := h.Payments.HandleCompletion(r.Context(), completion)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"payment_id": attempt.ID,
		"status":     attempt.Status,
	})
}

func (h *Handler) syncStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Sync.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) syncQueue(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := domain.EntryStatus(query.Get("status"))
	if status != "" && !status.Valid() {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}
	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := h.Sync.ListQueue(r.Context(), status, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.SyncEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) retryFailed(w http.ResponseWriter, r *http.Request) {
	report, err := h.Sync.RetryFailed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) forceSync(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RestaurantID uuid.UUID `json:"restaurant_id"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid JSON format: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	processed, err := h.Sync.ForceSync(r.Context(), body.RestaurantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"processed": processed})
}
