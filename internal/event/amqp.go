package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Forwarder relays bus events to a RabbitMQ topic exchange, using the event
// type as the routing key.
type Forwarder struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewForwarder(url string, exchange string) (*Forwarder, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open broker channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", exchange, err)
	}

	return &Forwarder{conn: conn, channel: ch, exchange: exchange}, nil
}

// Run consumes from bus until ctx is cancelled or the subscription closes.
func (f *Forwarder) Run(ctx context.Context, bus Bus) {
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := f.publish(ctx, e); err != nil {
				slog.Error("failed to forward event", "type", e.Type, "event_id", e.ID, "error", err)
			}
		}
	}
}

func (f *Forwarder) publish(ctx context.Context, e Event) error {
	msg, err := toMessage(e)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return f.channel.PublishWithContext(pubCtx, f.exchange, string(e.Type), false, false, msg)
}

func toMessage(e Event) (amqp.Publishing, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    e.ID,
		Type:         string(e.Type),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (f *Forwarder) Close() error {
	if err := f.channel.Close(); err != nil {
		f.conn.Close()
		return err
	}
	return f.conn.Close()
}
