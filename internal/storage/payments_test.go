package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dineswift-local/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var paymentCols = []string{"id", "order_id", "restaurant_id", "amount", "currency", "gateway", "status",
	"gateway_reference", "idempotency_key", "customer_phone", "customer_email", "error_message", "retry_count",
	"response_data", "created_at", "updated_at", "completed_at"}

func TestCreatePayment(t *testing.T) {
	tests := []struct {
		name          string
		execErr       error
		wantErr       bool
		wantIntegrity bool
	}{
		{name: "inserted"},
		{
			name:          "duplicate key",
			execErr:       &pq.Error{Code: "23505", Constraint: "payments_idempotency_key_key"},
			wantErr:       true,
			wantIntegrity: true,
		},
		{name: "driver failure", execErr: errors.New("connection reset"), wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			now := time.Now().UTC()
			payment := &domain.PaymentAttempt{
				OrderID:        uuid.New(),
				RestaurantID:   uuid.New(),
				Amount:         decimal.RequireFromString("25.50"),
				Currency:       "UGX",
				Gateway:        domain.GatewayMomo,
				Status:         domain.PaymentPending,
				IdempotencyKey: "pay-key",
				CreatedAt:      now,
				UpdatedAt:      now,
			}

			exec := mock.ExpectExec("INSERT INTO payments")
			if testCase.execErr != nil {
				exec.WillReturnError(testCase.execErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := repo.CreatePayment(context.Background(), payment)

			assert.NotEqual(t, uuid.Nil, payment.ID)
			if testCase.wantErr {
				require.Error(t, err)
				var integrity *domain.IntegrityError
				assert.Equal(t, testCase.wantIntegrity, errors.As(err, &integrity))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetPaymentByGatewayReference(t *testing.T) {
	repo, mock := newRepo(t)
	id, orderID, restaurantID := uuid.New(), uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("FROM payments").
		WithArgs("MOMO-778").
		WillReturnRows(sqlmock.NewRows(paymentCols).AddRow(
			id.String(), orderID.String(), restaurantID.String(), "25.50", "UGX", "MOMO", "completed",
			"MOMO-778", "pay-key", "+256700000000", "", "", 0, []byte(`{"status":"ok"}`), now, now, now))

	payment, err := repo.GetPaymentByGatewayReference(context.Background(), "MOMO-778")
	require.NoError(t, err)

	assert.Equal(t, id, payment.ID)
	assert.Equal(t, domain.GatewayMomo, payment.Gateway)
	assert.Equal(t, domain.PaymentCompleted, payment.Status)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("25.50")))
	assert.JSONEq(t, `{"status":"ok"}`, string(payment.ResponseData))
	require.NotNil(t, payment.CompletedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPayment_NotFound(t *testing.T) {
	repo, mock := newRepo(t)
	id := uuid.New()
	mock.ExpectQuery("FROM payments WHERE id").WithArgs(id).WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err := repo.GetPayment(context.Background(), id)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "payment", notFound.Resource)
}

func TestListStaleProcessing(t *testing.T) {
	repo, mock := newRepo(t)
	cutoff := time.Now().UTC().Add(-10 * time.Minute)
	earlier := cutoff.Add(-time.Hour)

	rows := sqlmock.NewRows(paymentCols)
	for i := 0; i < 2; i++ {
		rows.AddRow(uuid.NewString(), uuid.NewString(), uuid.NewString(), "10.00", "UGX", "VISA", "processing",
			"", uuid.NewString(), "", "", "", 1, nil, earlier, earlier, nil)
	}
	mock.ExpectQuery("WHERE status = 'processing' AND updated_at < \\$1").
		WithArgs(cutoff, 50).
		WillReturnRows(rows)

	payments, err := repo.ListStaleProcessing(context.Background(), cutoff, 50)
	require.NoError(t, err)

	require.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, domain.PaymentProcessing, p.Status)
		assert.Nil(t, p.CompletedAt)
		assert.Empty(t, p.ResponseData)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePayment_GuardsOnPreviousStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "status unchanged", affected: 1},
		{name: "settled concurrently", affected: 0, wantErr: domain.ErrPaymentChanged},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			repo, mock := newRepo(t)
			now := time.Now().UTC()
			payment := &domain.PaymentAttempt{ID: uuid.New(), Status: domain.PaymentFailed, ErrorMessage: "declined", RetryCount: 1, UpdatedAt: now}

			mock.ExpectExec("WHERE id = \\$1 AND status = \\$9").
				WithArgs(payment.ID, domain.PaymentFailed, "", "declined", 1, nil, now, nil, domain.PaymentProcessing).
				WillReturnResult(sqlmock.NewResult(0, testCase.affected))

			err := repo.UpdatePayment(context.Background(), payment, domain.PaymentProcessing)

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGetLatestPaymentForOrder(t *testing.T) {
	repo, mock := newRepo(t)
	orderID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery("WHERE order_id = \\$1").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(paymentCols).AddRow(
			uuid.NewString(), orderID.String(), uuid.NewString(), "27.00", "UGX", "MOMO", "processing",
			"MOMO-9", "retry-key", "+256700000000", "", "", 1, nil, now, now, nil))

	payment, err := repo.GetLatestPaymentForOrder(context.Background(), orderID)
	require.NoError(t, err)
	assert.Equal(t, orderID, payment.OrderID)
	assert.Equal(t, "retry-key", payment.IdempotencyKey)

	mock.ExpectQuery("WHERE order_id = \\$1").
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows(paymentCols))

	_, err = repo.GetLatestPaymentForOrder(context.Background(), orderID)
	assert.True(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
