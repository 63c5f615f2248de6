package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dineswift-local/internal/domain"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// translate maps driver errors onto the domain taxonomy.
func translate(err error, resource, key, value string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.NotFoundError{Resource: resource, Key: key, Value: value}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return &domain.IntegrityError{Constraint: pqErr.Constraint, Err: err}
	}
	return err
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		remote_ref TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		tax_rate NUMERIC(6,4),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id UUID PRIMARY KEY,
		restaurant_id UUID NOT NULL REFERENCES restaurants(id),
		local_order_id TEXT NOT NULL UNIQUE,
		remote_id TEXT,
		order_items JSONB NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		tax_amount NUMERIC(12,2) NOT NULL,
		total_amount NUMERIC(12,2) NOT NULL,
		order_status TEXT NOT NULL,
		sync_status TEXT NOT NULL,
		table_id TEXT,
		customer_id TEXT,
		special_instructions TEXT NOT NULL DEFAULT '',
		estimated_prep_minutes INT,
		actual_prep_minutes INT,
		payment_reference TEXT,
		sync_version BIGINT NOT NULL DEFAULT 1,
		sync_attempts INT NOT NULL DEFAULT 0,
		last_sync_attempt TIMESTAMPTZ,
		sync_error TEXT NOT NULL DEFAULT '',
		last_synced_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		prep_started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS orders_restaurant_created_idx ON orders (restaurant_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS order_conflict_states (
		order_id UUID PRIMARY KEY REFERENCES orders(id),
		vector_clock JSONB NOT NULL,
		last_operation TEXT NOT NULL,
		operation_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sync_queue (
		id UUID PRIMARY KEY,
		restaurant_id UUID NOT NULL REFERENCES restaurants(id),
		sync_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		priority INT NOT NULL DEFAULT 5,
		payload JSONB NOT NULL,
		idempotency_key TEXT NOT NULL UNIQUE,
		remote_id TEXT,
		retry_count INT NOT NULL DEFAULT 0,
		max_retries INT NOT NULL DEFAULT 5,
		last_retry TIMESTAMPTZ,
		next_retry TIMESTAMPTZ,
		error_message TEXT NOT NULL DEFAULT '',
		conflict_data JSONB,
		claimed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS sync_queue_claim_idx ON sync_queue (status, priority, created_at)`,
	`CREATE INDEX IF NOT EXISTS sync_queue_retry_idx ON sync_queue (status, next_retry)`,
	`CREATE TABLE IF NOT EXISTS menu_cache (
		id UUID PRIMARY KEY,
		restaurant_id UUID NOT NULL REFERENCES restaurants(id),
		menu_data JSONB NOT NULL,
		version INT NOT NULL,
		checksum TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_synced TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (restaurant_id, version)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS menu_cache_one_active_idx ON menu_cache (restaurant_id) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS otps (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id),
		code CHAR(6) NOT NULL,
		status TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL,
		verified_at TIMESTAMPTZ,
		attempts INT NOT NULL DEFAULT 0,
		max_attempts INT NOT NULL DEFAULT 5,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS otps_one_active_idx ON otps (order_id) WHERE status = 'active'`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL,
		restaurant_id UUID NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		currency TEXT NOT NULL DEFAULT 'UGX',
		gateway TEXT NOT NULL,
		status TEXT NOT NULL,
		gateway_reference TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT NOT NULL UNIQUE,
		customer_phone TEXT NOT NULL DEFAULT '',
		customer_email TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		retry_count INT NOT NULL DEFAULT 0,
		response_data JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS payments_gateway_ref_idx ON payments (gateway_reference)`,
	`CREATE TABLE IF NOT EXISTS activity_logs (
		id UUID PRIMARY KEY,
		restaurant_id UUID,
		level TEXT NOT NULL,
		module TEXT NOT NULL,
		action TEXT NOT NULL,
		details JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS health_checks (
		component TEXT PRIMARY KEY,
		is_healthy BOOLEAN NOT NULL,
		response_time_ms BIGINT,
		error_message TEXT NOT NULL DEFAULT '',
		last_check TIMESTAMPTZ NOT NULL
	)`,
}

func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i, c := range stmt {
		if c == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
