package watermark

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore — Store в памяти процесса.
//
// Виден только внутри одного процесса, поэтому годится для тестов
// и для нескольких Scheduler'ов, разделяющих один экземпляр MemoryStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	now     func() time.Time
}

// NewMemoryStore создаёт пустой MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
}

// Get возвращает watermark для key.
func (s *MemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	if key == "" {
		return 0, false, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	return e.Value, ok, nil
}

// Set записывает watermark для key.
func (s *MemoryStore) Set(_ context.Context, key string, value int64) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{Name: key, Value: value, UpdatedAt: s.now().UTC()}
	return nil
}

// Delete удаляет watermark.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; !ok {
		return ErrNotFound
	}
	delete(s.entries, key)
	return nil
}

// List возвращает все watermark'и.
func (s *MemoryStore) List(_ context.Context) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

var _ Admin = (*MemoryStore)(nil)
