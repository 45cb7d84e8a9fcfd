package watermark

import (
	"context"
	"time"
)

// Store — минимальная capability хранилища watermark'ов.
type Store interface {
	// Get возвращает watermark для key.
	// present=false, если значение ещё ни разу не записывалось.
	Get(ctx context.Context, key string) (value int64, present bool, err error)

	// Set записывает watermark для key.
	Set(ctx context.Context, key string, value int64) error
}

// Entry — watermark вместе с метаданными, для операторских инструментов.
type Entry struct {
	Name      string    `json:"name"`
	Value     int64     `json:"next_execution"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Time возвращает watermark как time.Time (UTC).
func (e Entry) Time() time.Time {
	return time.UnixMilli(e.Value).UTC()
}

// Admin — расширение Store для CLI: просмотр и удаление watermark'ов.
// Scheduler эти методы не использует.
type Admin interface {
	Store

	// Delete удаляет watermark. Возвращает ErrNotFound, если его нет.
	Delete(ctx context.Context, key string) error

	// List возвращает все watermark'и, отсортированные по имени.
	List(ctx context.Context) ([]Entry, error)
}
