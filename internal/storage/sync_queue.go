package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const entryColumns = `id, restaurant_id, sync_type, status, priority, payload, idempotency_key,
	COALESCE(remote_id, ''), retry_count, max_retries, last_retry, next_retry, error_message,
	conflict_data, claimed_at, created_at, updated_at`

// eligible matches entries a worker may take: fresh ones, and failed ones
// whose backoff has elapsed and whose retry budget is not spent.
const eligible = `(status = 'pending' OR (status = 'failed' AND retry_count < max_retries AND next_retry <= $1))`

const retryable = `(status = 'failed' AND retry_count < max_retries AND next_retry <= $1)`

func scanEntry(row scanner) (*domain.SyncEntry, error) {
	var (
		e                    domain.SyncEntry
		payload, conflict    []byte
		lastRetry, nextRetry sql.NullTime
		claimedAt            sql.NullTime
	)
	if err := row.Scan(
		&e.ID, &e.RestaurantID, &e.Kind, &e.Status, &e.Priority, &payload, &e.IdempotencyKey,
		&e.RemoteID, &e.RetryCount, &e.MaxRetries, &lastRetry, &nextRetry, &e.ErrorMessage,
		&conflict, &claimedAt, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Payload = json.RawMessage(payload)
	e.LastRetry = timePtr(lastRetry)
	e.NextRetry = timePtr(nextRetry)
	e.ClaimedAt = timePtr(claimedAt)
	if len(conflict) > 0 {
		var data domain.ConflictData
		if err := json.Unmarshal(conflict, &data); err != nil {
			return nil, fmt.Errorf("decode conflict data of entry %s: %w", e.ID, err)
		}
		e.Conflict = &data
	}
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]domain.SyncEntry, error) {
	defer rows.Close()

	var entries []domain.SyncEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// RETURNING does not preserve the subquery order.
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Priority != entries[j].Priority {
			return entries[i].Priority < entries[j].Priority
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

func insertSyncEntry(ctx context.Context, db execer, entry *domain.SyncEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Status == "" {
		entry.Status = domain.EntryPending
	}
	if entry.Priority == 0 {
		entry.Priority = domain.DefaultPriority
	}
	if entry.MaxRetries == 0 {
		entry.MaxRetries = domain.DefaultMaxRetries
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.UpdatedAt = entry.CreatedAt

	_, err := db.ExecContext(ctx, `
		INSERT INTO sync_queue (
			id, restaurant_id, sync_type, status, priority, payload, idempotency_key,
			retry_count, max_retries, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.ID, entry.RestaurantID, entry.Kind, entry.Status, entry.Priority, []byte(entry.Payload),
		entry.IdempotencyKey, entry.RetryCount, entry.MaxRetries, entry.CreatedAt, entry.UpdatedAt)
	return err
}

func (r *PostgresRepository) Enqueue(ctx context.Context, entry *domain.SyncEntry) error {
	return translate(insertSyncEntry(ctx, r.DB, entry), "sync entry", "idempotency_key", entry.IdempotencyKey)
}

func (r *PostgresRepository) GetEntry(ctx context.Context, id uuid.UUID) (*domain.SyncEntry, error) {
	entry, err := scanEntry(r.DB.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM sync_queue WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, "sync entry", "id", id.String())
	}
	return entry, nil
}

func (r *PostgresRepository) GetEntryByIdempotencyKey(ctx context.Context, key string) (*domain.SyncEntry, error) {
	entry, err := scanEntry(r.DB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM sync_queue WHERE idempotency_key = $1`, key))
	if err != nil {
		return nil, translate(err, "sync entry", "idempotency_key", key)
	}
	return entry, nil
}

func (r *PostgresRepository) claimWhere(ctx context.Context, condition string, now time.Time, limit int) ([]domain.SyncEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE sync_queue
		SET status = 'processing', claimed_at = $1, updated_at = $1
		WHERE id IN (
			SELECT id FROM sync_queue
			WHERE `+condition+`
			ORDER BY priority, created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		) AND `+condition+`
		RETURNING `+entryColumns, now, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ClaimDue moves up to limit eligible entries to processing in one
// conditional update and returns them in (priority, created_at) order.
func (r *PostgresRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error) {
	return r.claimWhere(ctx, eligible, now, limit)
}

// ClaimRetryable claims only failed entries whose backoff has elapsed.
func (r *PostgresRepository) ClaimRetryable(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error) {
	return r.claimWhere(ctx, retryable, now, limit)
}

// ClaimConflicts takes conflict entries for resolution. Their conflict data
// is kept so a failed resolution can put them back.
func (r *PostgresRepository) ClaimConflicts(ctx context.Context, now time.Time, limit int) ([]domain.SyncEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		UPDATE sync_queue
		SET status = 'processing', claimed_at = $1, updated_at = $1
		WHERE id IN (
			SELECT id FROM sync_queue
			WHERE status = 'conflict'
			ORDER BY priority, created_at
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		) AND status = 'conflict'
		RETURNING `+entryColumns, now, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// Claim is the single-entry compare-and-swap. It reports false when another
// worker already holds the entry or it is not eligible.
func (r *PostgresRepository) Claim(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'processing', claimed_at = $1, updated_at = $1
		WHERE id = $2 AND `+eligible, now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepository) CompleteEntry(ctx context.Context, id uuid.UUID, remoteID string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'completed', remote_id = COALESCE(NULLIF($2, ''), remote_id),
			conflict_data = NULL, error_message = '', claimed_at = NULL, updated_at = NOW()
		WHERE id = $1`, id, remoteID)
	return err
}

func (r *PostgresRepository) CancelEntry(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'cancelled', error_message = $2, claimed_at = NULL, updated_at = NOW()
		WHERE id = $1`, id, truncate(reason))
	return err
}

// SaveRetry persists the retry bookkeeping computed by the sync manager.
func (r *PostgresRepository) SaveRetry(ctx context.Context, entry *domain.SyncEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = $2, retry_count = $3, last_retry = $4, next_retry = $5,
			error_message = $6, claimed_at = NULL, updated_at = NOW()
		WHERE id = $1`,
		entry.ID, entry.Status, entry.RetryCount, entry.LastRetry, entry.NextRetry, truncate(entry.ErrorMessage))
	return err
}

func (r *PostgresRepository) MarkConflict(ctx context.Context, id uuid.UUID, data *domain.ConflictData, reason string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode conflict data: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'conflict', conflict_data = $2, error_message = $3, claimed_at = NULL, updated_at = NOW()
		WHERE id = $1`, id, raw, truncate(reason))
	return err
}

// ReclaimStuck returns entries abandoned in processing by a crashed worker.
// Entries that were being resolved go back to conflict, the rest to pending.
func (r *PostgresRepository) ReclaimStuck(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = CASE WHEN conflict_data IS NOT NULL THEN 'conflict' ELSE 'pending' END,
			claimed_at = NULL, updated_at = NOW()
		WHERE status = 'processing' AND claimed_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountExhausted counts failed entries whose retry budget is spent. They are
// left for manual intervention.
func (r *PostgresRepository) CountExhausted(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sync_queue WHERE status = 'failed' AND retry_count >= max_retries`).Scan(&n)
	return n, err
}

// ListEntries returns entries in the given status in processing order.
func (r *PostgresRepository) ListEntries(ctx context.Context, status domain.EntryStatus, limit int) ([]domain.SyncEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM sync_queue
		WHERE status = $1
		ORDER BY priority, created_at
		LIMIT $2`, status, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// RequeueExhausted gives failed entries with a spent retry budget a fresh one.
func (r *PostgresRepository) RequeueExhausted(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE sync_queue
		SET status = 'pending', retry_count = 0, next_retry = NULL, error_message = '', updated_at = $1
		WHERE status = 'failed' AND retry_count >= max_retries`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) QueueStats(ctx context.Context) (map[domain.EntryStatus]int, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT status, COUNT(*) FROM sync_queue GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[domain.EntryStatus]int{}
	for rows.Next() {
		var status domain.EntryStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= domain.MaxErrorLength {
		return s
	}
	return string(runes[:domain.MaxErrorLength])
}
