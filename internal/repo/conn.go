package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier — общее подмножество *pgxpool.Pool и *pgxpool.Conn.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type heldConnKey struct{}

// heldConn — соединение, на котором удерживается advisory lock.
type heldConn struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
}

// withConn кладёт в ctx соединение, взятое из pool.
func withConn(ctx context.Context, pool *pgxpool.Pool, conn *pgxpool.Conn) context.Context {
	return context.WithValue(ctx, heldConnKey{}, heldConn{pool: pool, conn: conn})
}

// querierFor возвращает соединение из ctx, если оно взято из того же пула,
// иначе сам пул. Внутри критической секции AdvisoryLocker запросы идут
// по соединению лока и не ждут свободного соединения в пуле.
func querierFor(ctx context.Context, pool *pgxpool.Pool) querier {
	if h, ok := ctx.Value(heldConnKey{}).(heldConn); ok && h.pool == pool && h.conn != nil {
		return h.conn
	}
	return pool
}
