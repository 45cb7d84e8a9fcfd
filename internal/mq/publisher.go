package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/syncron/internal/guard"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Типы сообщений.
const (
	MessageTypeJobClaimed MessageType = "job.claimed"
	MessageTypeJobFired   MessageType = "job.fired"
)

// Publisher публикует события jobs в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// JobFiredPayload — payload действия "publish".
type JobFiredPayload struct {
	Job           string `json:"job"`
	NextExecution int64  `json:"next_execution,omitempty"`
	Instance      string `json:"instance"`
	Message       string `json:"message,omitempty"`
}

// NewMessage создаёт сообщение с новым ID.
func NewMessage(t MessageType, payload any) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Type:      t,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Encode сериализует сообщение в AMQP Publishing.
func (m *Message) Encode() (amqp.Publishing, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal message: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:    m.ID,
		Type:         string(m.Type),
		Timestamp:    m.Timestamp,
		Body:         body,
	}, nil
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	pub, err := msg.Encode()
	if err != nil {
		return err
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			pub,
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// NotifyClaimed публикует job.claimed. Реализует guard.Notifier.
func (p *Publisher) NotifyClaimed(ctx context.Context, claim guard.Claim) error {
	msg := NewMessage(MessageTypeJobClaimed, claim)
	return p.Publish(ctx, ExchangeJobs, JobRoutingKey(MessageTypeJobClaimed, claim.Job), msg)
}

// PublishJobFired публикует job.fired.
func (p *Publisher) PublishJobFired(ctx context.Context, payload JobFiredPayload) error {
	msg := NewMessage(MessageTypeJobFired, payload)
	return p.Publish(ctx, ExchangeJobs, JobRoutingKey(MessageTypeJobFired, payload.Job), msg)
}

var _ guard.Notifier = (*Publisher)(nil)
