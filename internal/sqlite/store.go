// Package sqlite реализует watermark.Store в файле SQLite.
//
// Подходит для нескольких процессов на одном хосте: файл разделяется
// между ними, конкурентные записи сериализует сам SQLite (WAL +
// busy_timeout). Драйвер — modernc.org/sqlite, без cgo.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/shaiso/syncron/internal/watermark"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS job_watermarks (
		name           TEXT PRIMARY KEY,
		next_execution INTEGER NOT NULL,
		updated_at     INTEGER NOT NULL
	)
`

// WatermarkStore — watermark.Store в SQLite.
type WatermarkStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open открывает (или создаёт) базу по пути path и применяет схему.
func Open(ctx context.Context, path string) (*WatermarkStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}

	return &WatermarkStore{db: db, now: time.Now}, nil
}

// Close закрывает базу.
func (s *WatermarkStore) Close() error {
	return s.db.Close()
}

// Get возвращает watermark job.
func (s *WatermarkStore) Get(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, watermark.ErrEmptyKey
	}

	var value int64
	err := s.db.QueryRowContext(ctx,
		`SELECT next_execution FROM job_watermarks WHERE name = ?`, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get watermark %q: %w", name, err)
	}
	return value, true, nil
}

// Set записывает watermark (upsert).
func (s *WatermarkStore) Set(ctx context.Context, name string, value int64) error {
	if name == "" {
		return watermark.ErrEmptyKey
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO job_watermarks (name, next_execution, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE
		SET next_execution = excluded.next_execution, updated_at = excluded.updated_at
	`, name, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("set watermark %q: %w", name, err)
	}
	return nil
}

// Delete удаляет watermark.
func (s *WatermarkStore) Delete(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_watermarks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete watermark %q: %w", name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete watermark %q: %w", name, err)
	}
	if n == 0 {
		return watermark.ErrNotFound
	}
	return nil
}

// List возвращает все watermark'и.
func (s *WatermarkStore) List(ctx context.Context) ([]watermark.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, next_execution, updated_at
		FROM job_watermarks
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list watermarks: %w", err)
	}
	defer rows.Close()

	var entries []watermark.Entry
	for rows.Next() {
		var e watermark.Entry
		var updatedMs int64
		if err := rows.Scan(&e.Name, &e.Value, &updatedMs); err != nil {
			return nil, fmt.Errorf("scan watermark: %w", err)
		}
		e.UpdatedAt = time.UnixMilli(updatedMs).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ watermark.Admin = (*WatermarkStore)(nil)
