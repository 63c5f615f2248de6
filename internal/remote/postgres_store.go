// Package remote holds the adapters for the systems this node reconciles
// with: the authoritative order/menu database and the payment gateway.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of *pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore talks to the authoritative remote database. Every call is
// bounded by Timeout, and failures come back as TransientRemoteError or
// TerminalRemoteError.
type PostgresStore struct {
	pool    DB
	Timeout time.Duration
}

func NewPostgresStore(pool DB, timeout time.Duration) *PostgresStore {
	return &PostgresStore{pool: pool, Timeout: timeout}
}

func (s *PostgresStore) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

var remoteSchema = []string{
	`CREATE TABLE IF NOT EXISTS remote_orders (
		id TEXT PRIMARY KEY,
		idempotency_key TEXT NOT NULL UNIQUE,
		local_order_id TEXT NOT NULL,
		restaurant_ref TEXT NOT NULL,
		table_id TEXT NOT NULL DEFAULT '',
		customer_id TEXT NOT NULL DEFAULT '',
		items JSONB NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		tax_amount NUMERIC(12,2) NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL,
		special_instructions TEXT NOT NULL DEFAULT '',
		sync_version BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS remote_menus (
		restaurant_ref TEXT PRIMARY KEY,
		menu_data JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range remoteSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure remote schema: %w", err)
		}
	}
	return nil
}

// UpsertOrder creates the order or, when the idempotency key was already
// applied, overwrites it and returns the existing remote id.
func (s *PostgresStore) UpsertOrder(ctx context.Context, order domain.RemoteOrder, key string) (string, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	items, err := json.Marshal(order.Items)
	if err != nil {
		return "", &domain.TerminalRemoteError{Op: "upsert_order", Err: err}
	}
	id := order.ID
	if id == "" {
		id = uuid.NewString()
	}

	var remoteID string
	err = s.pool.QueryRow(ctx, `
		INSERT INTO remote_orders (
			id, idempotency_key, local_order_id, restaurant_ref, table_id, customer_id, items,
			subtotal, tax_amount, total_amount, status, special_instructions, sync_version,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (idempotency_key) DO UPDATE
		SET items = EXCLUDED.items, status = EXCLUDED.status,
			special_instructions = EXCLUDED.special_instructions,
			sync_version = EXCLUDED.sync_version, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		id, key, order.LocalOrderID, order.RestaurantRef, order.TableID, order.CustomerID, items,
		order.Subtotal.String(), order.TaxAmount.String(), order.TotalAmount.String(), string(order.Status),
		order.SpecialInstructions, order.SyncVersion, order.CreatedAt, order.UpdatedAt,
	).Scan(&remoteID)
	if err != nil {
		return "", classify("upsert_order", err)
	}
	return remoteID, nil
}

// UpdateOrder applies delta unless the remote copy was modified after
// delta.UpdatedAt, which is reported as a ConflictError carrying the remote
// copy. A missing remote order is terminal.
func (s *PostgresStore) UpdateOrder(ctx context.Context, remoteID string, delta domain.OrderDelta) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var items []byte
	if delta.Items != nil {
		raw, err := json.Marshal(delta.Items)
		if err != nil {
			return &domain.TerminalRemoteError{Op: "update_order", Err: err}
		}
		items = raw
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE remote_orders
		SET status = COALESCE(NULLIF($2, ''), status), items = COALESCE($3::jsonb, items),
			sync_version = $4, updated_at = $5
		WHERE id = $1 AND updated_at <= $5`,
		remoteID, string(delta.Status), items, delta.SyncVersion, delta.UpdatedAt)
	if err != nil {
		return classify("update_order", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	current, err := s.getOrder(ctx, remoteID)
	if err != nil {
		if domain.IsNotFound(err) {
			return &domain.TerminalRemoteError{Op: "update_order", Err: err}
		}
		return err
	}
	return &domain.ConflictError{OrderID: remoteID, Remote: current}
}

func (s *PostgresStore) GetOrder(ctx context.Context, remoteID string) (*domain.RemoteOrder, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return s.getOrder(ctx, remoteID)
}

func (s *PostgresStore) getOrder(ctx context.Context, remoteID string) (*domain.RemoteOrder, error) {
	var (
		order                domain.RemoteOrder
		items                []byte
		status               string
		subtotal, tax, total string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, local_order_id, restaurant_ref, table_id, customer_id, items,
			subtotal::text, tax_amount::text, total_amount::text, status, special_instructions,
			sync_version, created_at, updated_at
		FROM remote_orders WHERE id = $1`, remoteID,
	).Scan(&order.ID, &order.LocalOrderID, &order.RestaurantRef, &order.TableID, &order.CustomerID, &items,
		&subtotal, &tax, &total, &status, &order.SpecialInstructions,
		&order.SyncVersion, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "remote order", Key: "id", Value: remoteID}
	}
	if err != nil {
		return nil, classify("get_order", err)
	}

	order.Status = domain.OrderStatus(status)
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, &domain.TerminalRemoteError{Op: "get_order", Err: fmt.Errorf("decode items: %w", err)}
	}
	for dst, src := range map[*decimal.Decimal]string{&order.Subtotal: subtotal, &order.TaxAmount: tax, &order.TotalAmount: total} {
		value, err := decimal.NewFromString(src)
		if err != nil {
			return nil, &domain.TerminalRemoteError{Op: "get_order", Err: err}
		}
		*dst = value
	}
	return &order, nil
}

func (s *PostgresStore) GetMenu(ctx context.Context, restaurantRef string) (json.RawMessage, error) {
	ctx, cancel := s.bounded(ctx)
	defer cancel()

	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT menu_data FROM remote_menus WHERE restaurant_ref = $1`, restaurantRef).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "remote menu", Key: "restaurant_ref", Value: restaurantRef}
	}
	if err != nil {
		return nil, classify("get_menu", err)
	}
	return json.RawMessage(data), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return classify("ping", err)
	}
	return nil
}

// classify sorts driver errors into retryable and terminal. Constraint,
// data and schema errors are terminal; everything else, timeouts and
// connection failures included, is worth retrying.
func classify(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "22", "23", "42":
			return &domain.TerminalRemoteError{Op: op, Err: err}
		}
	}
	return &domain.TransientRemoteError{Op: op, Err: err}
}
