// Package notify pushes order lifecycle events to the merchant console's
// message bus. Publishing is best-effort: the lifecycle never fails because
// an event could not be delivered.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"eatery/internal/model"
)

type Notifier interface {
	OrderSubmitted(ctx context.Context, order *model.Order) error
	OrderPaid(ctx context.Context, order *model.Order) error
}

// Nop is used when no broker is configured.
type Nop struct{}

func (Nop) OrderSubmitted(ctx context.Context, order *model.Order) error { return nil }
func (Nop) OrderPaid(ctx context.Context, order *model.Order) error      { return nil }

type event struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Amount      float64   `json:"amount"`
	At          time.Time `json:"at"`
}

type AMQP struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewAMQP(url, queue string) (*AMQP, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	return &AMQP{conn: conn, ch: ch, queue: queue}, nil
}

func (a *AMQP) OrderSubmitted(ctx context.Context, order *model.Order) error {
	return a.publish(ctx, "order.submitted", order)
}

func (a *AMQP) OrderPaid(ctx context.Context, order *model.Order) error {
	return a.publish(ctx, "order.paid", order)
}

func (a *AMQP) publish(ctx context.Context, eventType string, order *model.Order) error {
	body, err := json.Marshal(event{
		Type:        eventType,
		OrderID:     order.ID,
		OrderNumber: order.Number,
		Amount:      order.Amount,
		At:          time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = a.ch.PublishWithContext(ctx, "", a.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    uuid.NewString(),
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (a *AMQP) Close() error {
	if err := a.ch.Close(); err != nil {
		a.conn.Close()
		return err
	}
	return a.conn.Close()
}
