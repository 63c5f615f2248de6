package service_test

import (
	"io"
	"log/slog"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func notFound(resource string) error {
	return &domain.NotFoundError{Resource: resource, Key: "id", Value: "x"}
}

func testOrder(status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:           uuid.New(),
		RestaurantID: uuid.New(),
		LocalOrderID: "PIZ-20261016093000-0001",
		Items: []domain.OrderItem{
			{ID: "margherita", Name: "Margherita", Price: money("10.00"), Quantity: 2},
			{ID: "soda", Name: "Soda", Price: money("5.00"), Quantity: 1},
		},
		Subtotal:    money("25.00"),
		TaxAmount:   money("2.00"),
		TotalAmount: money("27.00"),
		Status:      status,
		SyncStatus:  domain.SyncPending,
		SyncVersion: 1,
		CreatedAt:   fixedNow.Add(-time.Hour),
		UpdatedAt:   fixedNow.Add(-time.Hour),
	}
}
