// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, очереди событий и binding
//   - publisher.go  — публикация событий jobs
//   - consumer.go   — потребление событий (syncron-cli events tail)
//
// Типы сообщений:
//   - job.claimed — инстанс занял срабатывание job (guard.Notifier)
//   - job.fired   — действие job "publish" из jobs-файла
//
// Exchanges:
//   - syncron.jobs (topic), routing key "<type>.<job>"
package mq
