package service

import (
	"context"
	"log/slog"
	"time"

	"dineswift-local/internal/domain"

	"github.com/google/uuid"
)

// recordActivity writes the audit row. Failures are logged and swallowed so
// the audit trail never fails the operation it describes.
func recordActivity(ctx context.Context, activity ActivityLogger, logger *slog.Logger, restaurantID *uuid.UUID, level domain.LogLevel, module, action string, details map[string]any) {
	if activity == nil {
		return
	}
	entry := &domain.ActivityLog{
		RestaurantID: restaurantID,
		Level:        level,
		Module:       module,
		Action:       action,
		Details:      details,
	}
	if err := activity.LogActivity(ctx, entry); err != nil {
		logger.Warn("activity_log_failed", "action", action, "error", err)
	}
}

func publishOrderEvent(ctx context.Context, publisher EventPublisher, logger *slog.Logger, eventType string, order *domain.Order, at time.Time) {
	if publisher == nil {
		return
	}
	event := domain.OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		LocalOrderID: order.LocalOrderID,
		RestaurantID: order.RestaurantID,
		RemoteID:     order.RemoteID,
		Status:       order.Status,
		Timestamp:    at,
	}
	if err := publisher.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn("event_publish_failed", "type", eventType, "order_id", order.ID, "error", err)
	}
}
