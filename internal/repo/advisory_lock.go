package repo

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shaiso/syncron/internal/lock"
)

// AdvisoryLocker — распределённый лок на pg_advisory_lock.
//
// Имя лока хэшируется в bigint через hashtextextended. Лок
// session-level: он живёт, пока открыто соединение, поэтому на время
// критической секции соединение забирается из пула. Если инстанс
// падает, PostgreSQL отпускает лок вместе с сессией — отдельный TTL
// не нужен.
type AdvisoryLocker struct {
	pool *pgxpool.Pool
}

// NewAdvisoryLocker создаёт AdvisoryLocker.
func NewAdvisoryLocker(pool *pgxpool.Pool) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool}
}

// Lock блокируется в pg_advisory_lock до получения лока или отмены ctx.
func (l *AdvisoryLocker) Lock(ctx context.Context, name string) (lock.Lock, error) {
	if name == "" {
		return nil, lock.ErrEmptyName
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, name); err != nil {
		// pgx закрывает соединение при отмене запроса; пул его не переиспользует
		conn.Release()
		return nil, fmt.Errorf("pg_advisory_lock %q: %w", name, err)
	}

	return &advisoryLock{pool: l.pool, conn: conn, name: name}, nil
}

type advisoryLock struct {
	mu   sync.Mutex
	pool *pgxpool.Pool
	conn *pgxpool.Conn
	name string
}

// Bind отдаёт соединение лока запросам внутри критической секции.
// Иначе при занятых локами соединениях Get/Set ждали бы пул бесконечно.
func (l *advisoryLock) Bind(ctx context.Context) context.Context {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return ctx
	}
	return withConn(ctx, l.pool, l.conn)
}

// Unlock отпускает лок и возвращает соединение в пул.
// Если unlock не удался, соединение закрывается: сессия умирает
// и лок отпускается сервером.
func (l *advisoryLock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		return nil
	}
	conn := l.conn
	l.conn = nil

	var released bool
	err := conn.QueryRow(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, l.name).Scan(&released)
	if err == nil && released {
		conn.Release()
		return nil
	}

	raw := conn.Hijack()
	_ = raw.Close(ctx)

	if err != nil {
		return fmt.Errorf("pg_advisory_unlock %q: %w", l.name, err)
	}
	return fmt.Errorf("pg_advisory_unlock %q: %w", l.name, ErrLockNotHeld)
}

var (
	_ lock.Locker = (*AdvisoryLocker)(nil)
	_ lock.Binder = (*advisoryLock)(nil)
)
