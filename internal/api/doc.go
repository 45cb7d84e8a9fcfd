// Package api содержит HTTP API syncron-scheduler.
//
// Структура:
//   - handler.go  — Handler с DI (реестр jobs, хранилище, проверка backend'ов)
//   - routes.go   — регистрация маршрутов
//   - middleware.go — middleware (logging, recovery)
//   - response.go — унифицированные JSON-ответы и обработка ошибок
//   - jobs_handler.go — обработчики для /jobs и /watermarks
//
// API только читает состояние инстанса. Единственная мутирующая операция —
// снятие job с локального таймера; watermark при этом не меняется.
package api
