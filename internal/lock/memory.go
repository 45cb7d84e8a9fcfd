package lock

import (
	"context"
	"sync"
)

// MemoryLocker — Locker внутри одного процесса.
//
// Каждое имя — отдельный семафор на одно место. Ожидающие получают лок
// в порядке, который даёт рантайм Go; дополнительной очереди нет.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewMemoryLocker создаёт MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

// Lock блокируется до получения лока или отмены ctx.
func (m *MemoryLocker) Lock(ctx context.Context, name string) (Lock, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	slot := m.slot(name)

	select {
	case slot <- struct{}{}:
		return &memoryLock{slot: slot}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Held возвращает true, если лок name сейчас удерживается.
func (m *MemoryLocker) Held(name string) bool {
	return len(m.slot(name)) > 0
}

func (m *MemoryLocker) slot(name string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch, ok := m.slots[name]
	if !ok {
		ch = make(chan struct{}, 1)
		m.slots[name] = ch
	}
	return ch
}

type memoryLock struct {
	once sync.Once
	slot chan struct{}
}

func (l *memoryLock) Unlock(_ context.Context) error {
	l.once.Do(func() { <-l.slot })
	return nil
}
