package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dineswift-local/internal/domain"

	amqp "github.com/rabbitmq/amqp091-go"
)

const OrderEventsExchange = "order_events_topic"

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher sends order events to a durable topic exchange, routed
// as order.<event type>.
type RabbitPublisher struct {
	Channel  amqpChannel
	Exchange string
}

func NewRabbitPublisher(conn *amqp.Connection) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if err := ch.ExchangeDeclare(OrderEventsExchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, err
	}
	return &RabbitPublisher{Channel: ch, Exchange: OrderEventsExchange}, nil
}

func (p *RabbitPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	if p == nil || p.Channel == nil {
		return errors.New("nil channel")
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.Channel.PublishWithContext(ctx, p.Exchange, "order."+event.Type, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		MessageId:    event.OrderID.String(),
		Body:         body,
	})
}

func (p *RabbitPublisher) Close() error {
	if p == nil || p.Channel == nil {
		return nil
	}
	return p.Channel.Close()
}
