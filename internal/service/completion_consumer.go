package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"dineswift-local/internal/domain"

	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer uses.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// CompletionConsumer feeds gateway completion notifications from Kafka into
// the payment service.
type CompletionConsumer struct {
	Reader   MessageReader
	Payments PaymentServiceInterface
	Logger   *slog.Logger
}

func NewCompletionConsumer(reader MessageReader, payments PaymentServiceInterface, logger *slog.Logger) *CompletionConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompletionConsumer{
		Reader:   reader,
		Payments: payments,
		Logger:   logger.With("module", "payment_consumer"),
	}
}

// Start reads until ctx is cancelled. Bad messages are logged and skipped.
func (c *CompletionConsumer) Start(ctx context.Context) error {
	c.Logger.Info("payment_consumer_started")
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.Logger.Error("payment_consumer_read_failed", "error", err)
			continue
		}

		var completion domain.PaymentCompletion
		if err := json.Unmarshal(message.Value, &completion); err != nil {
			c.Logger.Warn("payment_completion_malformed", "offset", message.Offset, "error", err)
			continue
		}
		c.Process(ctx, completion)
	}
}

// Process applies one completion. Replays and late duplicates are no-ops in
// the payment service, so errors are only logged.
func (c *CompletionConsumer) Process(ctx context.Context, completion domain.PaymentCompletion) {
	attempt, err := c.Payments.HandleCompletion(ctx, completion)
	if err != nil {
		var validation *domain.ValidationError
		if errors.As(err, &validation) || domain.IsNotFound(err) {
			c.Logger.Warn("payment_completion_rejected", "transaction_id", completion.TransactionID, "error", err)
			return
		}
		c.Logger.Error("payment_completion_failed", "transaction_id", completion.TransactionID, "error", err)
		return
	}
	c.Logger.Info("payment_completion_processed", "payment_id", attempt.ID, "status", attempt.Status)
}
