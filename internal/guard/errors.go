package guard

import "errors"

// Ошибки guard'а. Наружу из Scheduler они не выходят — только в логи и метрики.
var (
	// ErrStore — ошибка чтения или записи watermark'а.
	ErrStore = errors.New("watermark store")

	// ErrActionPanic — действие job запаниковало.
	ErrActionPanic = errors.New("action panicked")
)
