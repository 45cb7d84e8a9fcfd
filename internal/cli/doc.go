// Package cli реализует команды syncron-cli.
//
// # Обзор
//
// CLI — инструмент оператора. В отличие от daemon'а он не регистрирует
// jobs, а работает напрямую с хранилищем watermark'ов и очередью событий:
//   - watermark: list, get, set, delete
//   - next: ближайшие срабатывания cron-выражения или даты
//   - events tail: поток событий job.claimed / job.fired из RabbitMQ
//
// # Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: syncron watermark list --json | jq .
//
// # Commands
//
// Каждая группа создаётся через фабричную функцию (NewWatermarkCmd и т.д.),
// принимающую замыкания для ленивого создания хранилища и Output
// после парсинга PersistentFlags.
package cli
