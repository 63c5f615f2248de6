package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

func (r *PostgresRepository) LogActivity(ctx context.Context, entry *domain.ActivityLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	var restaurantID any
	if entry.RestaurantID != nil {
		restaurantID = *entry.RestaurantID
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO activity_logs (id, restaurant_id, level, module, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, restaurantID, entry.Level, entry.Module, entry.Action, raw, entry.CreatedAt)
	return err
}

func (r *PostgresRepository) PurgeActivity(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM activity_logs WHERE created_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *PostgresRepository) SaveHealthCheck(ctx context.Context, check *domain.HealthCheck) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO health_checks (component, is_healthy, response_time_ms, error_message, last_check)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (component) DO UPDATE
		SET is_healthy = EXCLUDED.is_healthy, response_time_ms = EXCLUDED.response_time_ms,
			error_message = EXCLUDED.error_message, last_check = EXCLUDED.last_check`,
		check.Component, check.IsHealthy, check.ResponseTimeMs, truncate(check.ErrorMessage), check.LastCheck)
	return err
}

func (r *PostgresRepository) ListHealthChecks(ctx context.Context) ([]domain.HealthCheck, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT component, is_healthy, response_time_ms, error_message, last_check
		FROM health_checks ORDER BY component`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []domain.HealthCheck
	for rows.Next() {
		var check domain.HealthCheck
		var elapsed sql.NullInt64
		if err := rows.Scan(&check.Component, &check.IsHealthy, &elapsed, &check.ErrorMessage, &check.LastCheck); err != nil {
			return nil, err
		}
		if elapsed.Valid {
			ms := elapsed.Int64
			check.ResponseTimeMs = &ms
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}
