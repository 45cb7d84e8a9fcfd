package lock

import "errors"

// Ошибки локов.
var (
	// ErrAcquire — не удалось получить лок.
	ErrAcquire = errors.New("acquire lock")

	// ErrUnlock — не удалось отпустить лок.
	ErrUnlock = errors.New("release lock")

	// ErrEmptyName — пустое имя лока.
	ErrEmptyName = errors.New("empty lock name")
)
