package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/syncron/internal/watermark"
)

// WatermarkRepo — хранилище watermark'ов в таблице job_watermarks.
//
// Под локом AdvisoryLocker того же пула запросы выполняются на
// соединении лока.
type WatermarkRepo struct {
	pool *pgxpool.Pool
}

// NewWatermarkRepo создаёт новый WatermarkRepo.
func NewWatermarkRepo(pool *pgxpool.Pool) *WatermarkRepo {
	return &WatermarkRepo{pool: pool}
}

// Get возвращает watermark job.
func (r *WatermarkRepo) Get(ctx context.Context, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, watermark.ErrEmptyKey
	}

	var value int64
	err := querierFor(ctx, r.pool).QueryRow(ctx,
		`SELECT next_execution FROM job_watermarks WHERE name = $1`, name,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get watermark %q: %w", name, err)
	}
	return value, true, nil
}

// Set записывает watermark (upsert).
func (r *WatermarkRepo) Set(ctx context.Context, name string, value int64) error {
	if name == "" {
		return watermark.ErrEmptyKey
	}

	query := `
		INSERT INTO job_watermarks (name, next_execution, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE
		SET next_execution = EXCLUDED.next_execution, updated_at = NOW()
	`
	if _, err := querierFor(ctx, r.pool).Exec(ctx, query, name, value); err != nil {
		return fmt.Errorf("set watermark %q: %w", name, err)
	}
	return nil
}

// Delete удаляет watermark.
func (r *WatermarkRepo) Delete(ctx context.Context, name string) error {
	result, err := querierFor(ctx, r.pool).Exec(ctx, `DELETE FROM job_watermarks WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete watermark %q: %w", name, err)
	}
	if result.RowsAffected() == 0 {
		return watermark.ErrNotFound
	}
	return nil
}

// List возвращает все watermark'и.
func (r *WatermarkRepo) List(ctx context.Context) ([]watermark.Entry, error) {
	rows, err := querierFor(ctx, r.pool).Query(ctx, `
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
		if err := rows.Scan(&e.Name, &e.Value, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watermark: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ watermark.Admin = (*WatermarkRepo)(nil)
