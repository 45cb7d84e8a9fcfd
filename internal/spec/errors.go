package spec

import "errors"

// Ошибки расписаний.
var (
	// ErrUnsupportedSpec — значение не является cron-строкой, правилом или датой.
	ErrUnsupportedSpec = errors.New("unsupported schedule spec")

	// ErrInvalidCron — cron-выражение не распарсилось.
	ErrInvalidCron = errors.New("invalid cron expression")

	// ErrNoOccurrence — у расписания нет будущих срабатываний.
	ErrNoOccurrence = errors.New("schedule has no future occurrence")
)
