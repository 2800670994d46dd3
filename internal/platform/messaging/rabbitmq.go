package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"fundry/internal/shared/events"
)

const rabbitExchange = "fundry.events"

// RabbitMQ is the cross-process event bus adapter. It speaks the same
// Publish/Subscribe surface as the in-process bus, so deployments pick one
// by configuration without touching module wiring.
type RabbitMQ struct {
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *slog.Logger
}

func NewRabbitMQ(url string, logger *slog.Logger) (*RabbitMQ, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	err = channel.ExchangeDeclare(rabbitExchange, "topic", true, false, false, false, nil)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare rabbitmq exchange: %w", err)
	}
	return &RabbitMQ{conn: conn, channel: channel, logger: logger}, nil
}

func (r *RabbitMQ) Close() error {
	if r.channel != nil {
		_ = r.channel.Close()
	}
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

func (r *RabbitMQ) Publish(ctx context.Context, topic string, event events.Envelope) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	err = r.channel.PublishWithContext(ctx, rabbitExchange, topic, false, false, amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    event.EventID,
		Type:         event.EventType,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if r.logger != nil {
		r.logger.Info("event published",
			"event", "rabbitmq_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (r *RabbitMQ) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	queueName := fmt.Sprintf("%s.%s", consumerGroup, topic)
	queue, err := r.channel.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", queueName, err)
	}
	if err := r.channel.QueueBind(queue.Name, topic, rabbitExchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", queueName, err)
	}
	deliveries, err := r.channel.Consume(queue.Name, consumerGroup, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume queue %s: %w", queueName, err)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				var event events.Envelope
				if err := json.Unmarshal(delivery.Body, &event); err != nil {
					if r.logger != nil {
						r.logger.Error("discarding undecodable event",
							"event", "rabbitmq_decode_failed",
							"module", "internal/platform/messaging",
							"layer", "platform",
							"topic", topic,
							"error", err.Error(),
						)
					}
					_ = delivery.Nack(false, false)
					continue
				}
				if err := handler(ctx, event); err != nil {
					if r.logger != nil {
						r.logger.Error("consumer handler failed",
							"event", "rabbitmq_consume_failed",
							"module", "internal/platform/messaging",
							"layer", "platform",
							"topic", topic,
							"consumer_group", consumerGroup,
							"event_id", event.EventID,
							"error", err.Error(),
						)
					}
					// Redeliver on handler failure; dedup keeps replays safe.
					_ = delivery.Nack(false, true)
					continue
				}
				_ = delivery.Ack(false)
			}
		}
	}()
	return nil
}
