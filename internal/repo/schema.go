package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL — схема хранилища watermark'ов.
// next_execution — миллисекунды с epoch, как их вычисляет guard.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS job_watermarks (
		name           TEXT PRIMARY KEY,
		next_execution BIGINT NOT NULL,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// Migrate создаёт таблицы, если их ещё нет. Идемпотентна.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate job_watermarks: %w", err)
	}
	return nil
}
