package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dineswift-local/internal/checksum"
	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

const snapshotColumns = `id, restaurant_id, menu_data, version, checksum, is_active, last_synced, created_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanSnapshot(row scanner) (*domain.MenuSnapshot, error) {
	var s domain.MenuSnapshot
	var data []byte
	if err := row.Scan(&s.ID, &s.RestaurantID, &data, &s.Version, &s.Checksum, &s.IsActive, &s.LastSynced, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.MenuData = json.RawMessage(data)
	return &s, nil
}

func activeSnapshot(ctx context.Context, db queryRower, restaurantID uuid.UUID, lock bool) (*domain.MenuSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM menu_cache WHERE restaurant_id = $1 AND is_active`
	if lock {
		query += ` FOR UPDATE`
	}
	return scanSnapshot(db.QueryRowContext(ctx, query, restaurantID))
}

func (r *PostgresRepository) GetActiveSnapshot(ctx context.Context, restaurantID uuid.UUID) (*domain.MenuSnapshot, error) {
	snapshot, err := activeSnapshot(ctx, r.DB, restaurantID, false)
	if err != nil {
		return nil, translate(err, "menu", "restaurant_id", restaurantID.String())
	}
	return snapshot, nil
}

// PutIfChanged stores payload as the new active version unless it hashes to
// the active checksum, in which case only last_synced moves. Deactivation of
// the previous version and the insert happen in one transaction.
func (r *PostgresRepository) PutIfChanged(ctx context.Context, restaurantID uuid.UUID, payload json.RawMessage, now time.Time) (*domain.MenuSnapshot, bool, error) {
	sum, err := checksum.Compute(payload)
	if err != nil {
		return nil, false, fmt.Errorf("menu of restaurant %s: %w", restaurantID, err)
	}

	var (
		result  *domain.MenuSnapshot
		created bool
	)
	err = r.withTx(ctx, func(tx *sql.Tx) error {
		current, err := activeSnapshot(ctx, tx, restaurantID, true)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if current != nil && current.Checksum == sum {
			if _, err := tx.ExecContext(ctx,
				`UPDATE menu_cache SET last_synced = $2 WHERE id = $1`, current.ID, now); err != nil {
				return err
			}
			current.LastSynced = now
			result = current
			return nil
		}

		var version int
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM menu_cache WHERE restaurant_id = $1`,
			restaurantID).Scan(&version); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE menu_cache SET is_active = FALSE WHERE restaurant_id = $1 AND is_active`, restaurantID); err != nil {
			return err
		}

		snapshot := &domain.MenuSnapshot{
			ID:           uuid.New(),
			RestaurantID: restaurantID,
			MenuData:     payload,
			Version:      version,
			Checksum:     sum,
			IsActive:     true,
			LastSynced:   now,
			CreatedAt:    now,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO menu_cache (id, restaurant_id, menu_data, version, checksum, is_active, last_synced, created_at)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7)`,
			snapshot.ID, snapshot.RestaurantID, []byte(payload), snapshot.Version, snapshot.Checksum,
			snapshot.LastSynced, snapshot.CreatedAt); err != nil {
			return err
		}
		result = snapshot
		created = true
		return nil
	})
	if err != nil {
		return nil, false, translate(err, "menu", "restaurant_id", restaurantID.String())
	}
	return result, created, nil
}
