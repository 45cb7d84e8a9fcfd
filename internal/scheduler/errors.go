package scheduler

import "errors"

// Ошибки регистрации jobs.
var (
	// ErrNoStore — не задано хранилище watermark'ов.
	ErrNoStore = errors.New("watermark store is required")

	// ErrNoLocker — не задан распределённый лок.
	ErrNoLocker = errors.New("locker is required")

	// ErrEmptyName — пустое имя job.
	ErrEmptyName = errors.New("job name is required")

	// ErrNilAction — не задано действие job.
	ErrNilAction = errors.New("job action is required")

	// ErrExpired — дата одноразового job уже прошла.
	ErrExpired = errors.New("one-off schedule is in the past")
)
