package lock

import (
	"context"
	"errors"
	"fmt"
)

// Locker выдаёт эксклюзивные локи по имени.
type Locker interface {
	// Lock блокируется до получения лока name.
	// Возвращает ошибку, если ctx отменён или backend недоступен.
	Lock(ctx context.Context, name string) (Lock, error)
}

// Lock — полученный лок.
type Lock interface {
	// Unlock отпускает лок. Повторный вызов — no-op.
	Unlock(ctx context.Context) error
}

// Binder — лок, который держит ресурс, нужный внутри критической секции
// (например, соединение с БД). WithLock передаёт fn контекст из Bind.
type Binder interface {
	Bind(ctx context.Context) context.Context
}

// LockerFunc позволяет использовать функцию как Locker.
type LockerFunc func(ctx context.Context, name string) (Lock, error)

// Lock вызывает f(ctx, name).
func (f LockerFunc) Lock(ctx context.Context, name string) (Lock, error) {
	return f(ctx, name)
}

// WithLock выполняет fn, удерживая лок name.
//
// Лок отпускается после fn в любом случае. Ошибка fn имеет приоритет
// над ошибкой Unlock; если fn завершилась успешно, а Unlock — нет,
// возвращается ErrUnlock. Если лок реализует Binder, fn получает
// контекст из Bind.
func WithLock(ctx context.Context, l Locker, name string, fn func(ctx context.Context) error) (err error) {
	lk, err := l.Lock(ctx, name)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrAcquire, name, err)
	}

	defer func() {
		// Отпускаем даже при отменённом ctx вызывающего
		uerr := lk.Unlock(context.WithoutCancel(ctx))
		if uerr != nil && err == nil {
			err = fmt.Errorf("%w %q: %w", ErrUnlock, name, uerr)
		}
	}()

	fnCtx := ctx
	if b, ok := lk.(Binder); ok {
		fnCtx = b.Bind(ctx)
	}
	return fn(fnCtx)
}

// IsAcquireError возвращает true, если ошибка WithLock возникла
// при получении лока (fn не вызывалась).
func IsAcquireError(err error) bool {
	return errors.Is(err, ErrAcquire)
}
