package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// Exchanges — имена обменников.
const (
	ExchangeJobs Exchange = "syncron.jobs"
)

// Queues — имена очередей.
const (
	QueueJobEvents Queue = "jobs.events"
)

// Routing keys.
const (
	RoutingKeyAll RoutingKey = "#"
)

// JobRoutingKey возвращает routing key события job: "<type>.<job>".
func JobRoutingKey(t MessageType, job string) RoutingKey {
	prefix := "claimed"
	if t == MessageTypeJobFired {
		prefix = "fired"
	}
	return RoutingKey(prefix + "." + job)
}

// SetupTopology объявляет exchange, очередь событий и binding. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeJobs), // name
			"topic",              // type
			true,                 // durable
			false,                // auto-deleted
			false,                // internal
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeJobs, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueJobEvents), // name
			true,                   // durable
			false,                  // delete when unused
			false,                  // exclusive
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueJobEvents, err)
		}

		err = ch.QueueBind(
			string(QueueJobEvents), // queue name
			string(RoutingKeyAll),  // routing key
			string(ExchangeJobs),   // exchange
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueJobEvents, ExchangeJobs, err)
		}

		return nil
	})
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  syncron RabbitMQ Topology:

    syncron.jobs (topic)
    └── jobs.events [routing: #]
            claimed.<job>  — guard занял срабатывание
            fired.<job>    — действие "publish"
            Consumer: внешние подписчики
    └── amq.gen-* (exclusive) — syncron-cli events tail
  `
}
