package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type scanner interface {
	Scan(dest ...any) error
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *PostgresRepository) CreateRestaurant(ctx context.Context, rest *domain.Restaurant) error {
	if rest.ID == uuid.Nil {
		rest.ID = uuid.New()
	}
	var taxRate any
	if rest.TaxRate != nil {
		taxRate = *rest.TaxRate
	}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO restaurants (id, name, remote_ref, is_active, tax_rate)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		rest.ID, rest.Name, rest.RemoteRef, rest.IsActive, taxRate,
	).Scan(&rest.CreatedAt, &rest.UpdatedAt)
	return translate(err, "restaurant", "id", rest.ID.String())
}

const restaurantColumns = `id, name, remote_ref, is_active, tax_rate, created_at, updated_at`

func scanRestaurant(row scanner) (*domain.Restaurant, error) {
	var rest domain.Restaurant
	var taxRate decimal.NullDecimal
	if err := row.Scan(&rest.ID, &rest.Name, &rest.RemoteRef, &rest.IsActive, &taxRate, &rest.CreatedAt, &rest.UpdatedAt); err != nil {
		return nil, err
	}
	if taxRate.Valid {
		rest.TaxRate = &taxRate.Decimal
	}
	return &rest, nil
}

func (r *PostgresRepository) GetRestaurant(ctx context.Context, id uuid.UUID) (*domain.Restaurant, error) {
	rest, err := scanRestaurant(r.DB.QueryRowContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "restaurant", "id", id.String())
	}
	return rest, nil
}

func (r *PostgresRepository) ListActiveRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+restaurantColumns+` FROM restaurants WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []domain.Restaurant
	for rows.Next() {
		rest, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, *rest)
	}
	return restaurants, rows.Err()
}

// CountOrdersSince feeds the daily sequence in local order ids.
func (r *PostgresRepository) CountOrdersSince(ctx context.Context, restaurantID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE restaurant_id = $1 AND created_at >= $2`,
		restaurantID, since).Scan(&count)
	return count, err
}

// CreateOrder persists the order with its conflict state, pickup code and
// first sync entry in one transaction.
func (r *PostgresRepository) CreateOrder(ctx context.Context, bundle *domain.OrderBundle) error {
	order := bundle.Order
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	err = r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (
				id, restaurant_id, local_order_id, order_items, subtotal, tax_amount, total_amount,
				order_status, sync_status, table_id, customer_id, special_instructions,
				estimated_prep_minutes, sync_version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
			order.ID, order.RestaurantID, order.LocalOrderID, items, order.Subtotal, order.TaxAmount, order.TotalAmount,
			order.Status, order.SyncStatus, nullString(order.TableID), nullString(order.CustomerID), order.SpecialInstructions,
			order.EstimatedPrepMinutes, order.SyncVersion, order.CreatedAt, order.UpdatedAt,
		); err != nil {
			return err
		}

		if err := insertConflictState(ctx, tx, bundle.State); err != nil {
			return err
		}
		if err := insertOTP(ctx, tx, bundle.OTP); err != nil {
			return err
		}
		return insertSyncEntry(ctx, tx, bundle.Entry)
	})
	return translate(err, "order", "local_order_id", order.LocalOrderID)
}

const orderColumns = `id, restaurant_id, local_order_id, COALESCE(remote_id, ''), order_items,
	subtotal, tax_amount, total_amount, order_status, sync_status,
	COALESCE(table_id, ''), COALESCE(customer_id, ''), special_instructions,
	estimated_prep_minutes, actual_prep_minutes, COALESCE(payment_reference, ''),
	sync_version, sync_attempts, last_sync_attempt, sync_error, last_synced_at,
	created_at, updated_at, prep_started_at, completed_at`

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o                        domain.Order
		items                    []byte
		estimated, actual        sql.NullInt32
		lastAttempt, lastSynced  sql.NullTime
		prepStarted, completedAt sql.NullTime
	)
	if err := row.Scan(
		&o.ID, &o.RestaurantID, &o.LocalOrderID, &o.RemoteID, &items,
		&o.Subtotal, &o.TaxAmount, &o.TotalAmount, &o.Status, &o.SyncStatus,
		&o.TableID, &o.CustomerID, &o.SpecialInstructions,
		&estimated, &actual, &o.PaymentRef,
		&o.SyncVersion, &o.SyncAttempts, &lastAttempt, &o.SyncError, &lastSynced,
		&o.CreatedAt, &o.UpdatedAt, &prepStarted, &completedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode items of order %s: %w", o.ID, err)
	}
	o.EstimatedPrepMinutes = intPtr(estimated)
	o.ActualPrepMinutes = intPtr(actual)
	o.LastSyncAttempt = timePtr(lastAttempt)
	o.LastSyncedAt = timePtr(lastSynced)
	o.PrepStartedAt = timePtr(prepStarted)
	o.CompletedAt = timePtr(completedAt)
	return &o, nil
}

func intPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func (r *PostgresRepository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	order, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "order", "id", id.String())
	}
	return order, nil
}

func (r *PostgresRepository) ListOrders(ctx context.Context, restaurantID uuid.UUID, status domain.OrderStatus) ([]domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE restaurant_id = $1 AND ($2 = '' OR order_status = $2)
		ORDER BY created_at DESC`, restaurantID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// TransitionOrder applies a status change only if the stored status still
// equals from, bumps the local clock and enqueues the update entry.
func (r *PostgresRepository) TransitionOrder(ctx context.Context, order *domain.Order, from domain.OrderStatus, entry *domain.SyncEntry) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET order_status = $3, sync_status = $4, prep_started_at = $5, completed_at = $6,
				actual_prep_minutes = $7, sync_version = sync_version + 1, updated_at = $8
			WHERE id = $1 AND order_status = $2`,
			order.ID, from, order.Status, domain.SyncPending, order.PrepStartedAt, order.CompletedAt,
			order.ActualPrepMinutes, order.UpdatedAt)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("order %s is no longer %s: %w", order.ID, from, domain.ErrInvalidTransition)
		}
		order.SyncVersion++
		order.SyncStatus = domain.SyncPending

		if err := bumpClock(ctx, tx, order.ID, domain.ActorLocal, "status_update", order.UpdatedAt); err != nil {
			return err
		}
		return insertSyncEntry(ctx, tx, entry)
	})
}

func insertConflictState(ctx context.Context, db execer, state *domain.ConflictState) error {
	clock, err := json.Marshal(state.Clock)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO order_conflict_states (order_id, vector_clock, last_operation, operation_at)
		VALUES ($1, $2, $3, $4)`,
		state.OrderID, clock, state.LastOperation, state.OperationAt)
	return err
}

// bumpClock increments one actor's counter. A missing row is recreated with
// the initial clock so a lost state never blocks a transition.
func bumpClock(ctx context.Context, db execer, orderID uuid.UUID, actor, operation string, at time.Time) error {
	res, err := db.ExecContext(ctx, `
		UPDATE order_conflict_states
		SET vector_clock = jsonb_set(vector_clock, ARRAY[$2::text],
				to_jsonb(COALESCE((vector_clock->>$2)::bigint, 0) + 1)),
			last_operation = $3, operation_at = $4
		WHERE order_id = $1`,
		orderID, actor, operation, at)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	state := domain.NewConflictState(orderID, at)
	state.LastOperation = operation
	return insertConflictState(ctx, db, &state)
}

func (r *PostgresRepository) GetConflictState(ctx context.Context, orderID uuid.UUID) (*domain.ConflictState, error) {
	state := domain.ConflictState{OrderID: orderID}
	var clock []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT vector_clock, last_operation, operation_at
		FROM order_conflict_states WHERE order_id = $1`, orderID).
		Scan(&clock, &state.LastOperation, &state.OperationAt)
	if err != nil {
		return nil, translate(err, "conflict state", "order_id", orderID.String())
	}
	if err := json.Unmarshal(clock, &state.Clock); err != nil {
		return nil, fmt.Errorf("decode clock of order %s: %w", orderID, err)
	}
	return &state, nil
}

func (r *PostgresRepository) SetPaymentReference(ctx context.Context, orderID uuid.UUID, reference string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET payment_reference = $2 WHERE id = $1`, orderID, reference)
	return err
}

// MarkOrderSynced records a successful push of the order as it stood at
// syncedAt. The remote id and baseline are always kept; the synced flag is
// only set when no local change landed after the pushed copy.
func (r *PostgresRepository) MarkOrderSynced(ctx context.Context, orderID uuid.UUID, remoteID string, syncedAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE orders
		SET remote_id = COALESCE(NULLIF($2, ''), remote_id),
			sync_status = CASE WHEN updated_at = $4 THEN $3 ELSE sync_status END,
			sync_attempts = sync_attempts + 1, last_sync_attempt = NOW(), sync_error = '', last_synced_at = $4
		WHERE id = $1`,
		orderID, remoteID, domain.SyncSynced, syncedAt)
	return err
}

func (r *PostgresRepository) RecordSyncFailure(ctx context.Context, orderID uuid.UUID, message string, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE orders
		SET sync_status = $2, sync_attempts = sync_attempts + 1, last_sync_attempt = $3, sync_error = $4
		WHERE id = $1`,
		orderID, domain.SyncFailed, at, message)
	return err
}

func (r *PostgresRepository) MarkOrderConflict(ctx context.Context, orderID uuid.UUID) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE orders SET sync_status = $2 WHERE id = $1`, orderID, domain.SyncConflict)
	return err
}

// ApplyResolvedOrder writes the outcome of conflict resolution. When the
// remote copy won, the remote actor's counter is bumped as well.
func (r *PostgresRepository) ApplyResolvedOrder(ctx context.Context, order *domain.Order, remoteWon bool) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET order_items = $2, order_status = $3, sync_status = $4, sync_version = $5,
				updated_at = $6, last_synced_at = $7, remote_id = COALESCE(NULLIF($8, ''), remote_id),
				special_instructions = $9, subtotal = $10, tax_amount = $11, total_amount = $12
			WHERE id = $1`,
			order.ID, items, order.Status, order.SyncStatus, order.SyncVersion,
			order.UpdatedAt, order.LastSyncedAt, order.RemoteID, order.SpecialInstructions,
			order.Subtotal, order.TaxAmount, order.TotalAmount,
		); err != nil {
			return err
		}
		if !remoteWon {
			return nil
		}
		return bumpClock(ctx, tx, order.ID, domain.ActorRemote, "conflict_pull", order.UpdatedAt)
	})
}
