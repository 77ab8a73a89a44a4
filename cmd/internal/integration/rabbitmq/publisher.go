package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"formconsult/cmd/internal/config"

	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
)

// AppointmentEvent is published after every committed lifecycle transition.
type AppointmentEvent struct {
	AppointmentID  string `json:"appointment_id"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	ActorID        string `json:"actor_id"`
	OccurredAt     string `json:"occurred_at"`
}

// RoutingKey is "appointment.<status>" in lower case.
func (e AppointmentEvent) RoutingKey() string {
	return "appointment." + strings.ToLower(e.Status)
}

type Publisher interface {
	PublishAppointmentEvent(ctx context.Context, event AppointmentEvent) error
	Close() error
}

type AmqpPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewPublisher dials the broker and declares the topic exchange. When
// RabbitMQ is disabled it returns a publisher that drops every event.
func NewPublisher(cfg config.RabbitMQConfig) (Publisher, error) {
	if !cfg.Enabled {
		log.Info("rabbitmq is disabled, lifecycle events will not be published")
		return NoopPublisher{}, nil
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	err = channel.ExchangeDeclare(cfg.Exchange, amqp.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", cfg.Exchange, err)
	}

	return &AmqpPublisher{conn: conn, channel: channel, exchange: cfg.Exchange}, nil
}

func (p *AmqpPublisher) PublishAppointmentEvent(ctx context.Context, event AppointmentEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("rabbitmq: marshal event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         "appointment.transition",
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.PublishWithContext(ctx, p.exchange, event.RoutingKey(), false, false, msg); err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", event.RoutingKey(), err)
	}
	return nil
}

func (p *AmqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.channel.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

type NoopPublisher struct{}

func (NoopPublisher) PublishAppointmentEvent(context.Context, AppointmentEvent) error { return nil }
func (NoopPublisher) Close() error                                                    { return nil }
