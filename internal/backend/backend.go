// Package backend собирает хранилище watermark'ов и распределённый лок
// по конфигурации. Используется и daemon'ом, и CLI.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/syncron/internal/config"
	"github.com/shaiso/syncron/internal/lock"
	"github.com/shaiso/syncron/internal/rediskv"
	"github.com/shaiso/syncron/internal/repo"
	"github.com/shaiso/syncron/internal/sqlite"
	"github.com/shaiso/syncron/internal/watermark"
)

// Backends — открытые хранилище и лок.
type Backends struct {
	Store  watermark.Admin
	Locker lock.Locker

	pool    *pgxpool.Pool
	redis   *redis.Client
	closers []func() error
}

// Open подключается к backend'ам из cfg.
// PostgreSQL и Redis клиенты переиспользуются, если store и lock на одном backend'е.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}

	store, err := b.openStore(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open store %s: %w", cfg.StoreBackend, err)
	}
	b.Store = store

	locker, err := b.openLocker(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("open locker %s: %w", cfg.LockBackend, err)
	}
	b.Locker = locker

	logger.Info("backends ready",
		"store", cfg.StoreBackend,
		"lock", cfg.LockBackend,
	)
	return b, nil
}

func (b *Backends) openStore(ctx context.Context, cfg config.Config) (watermark.Admin, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err := b.postgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := repo.Migrate(ctx, pool); err != nil {
			return nil, err
		}
		return repo.NewWatermarkRepo(pool), nil

	case config.BackendRedis:
		client, err := b.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return rediskv.NewWatermarkStore(client, rediskv.WithPrefix(cfg.RedisPrefix)), nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, store.Close)
		return store, nil

	case config.BackendMemory:
		return watermark.NewMemoryStore(), nil
	}

	return nil, config.ErrUnknownBackend
}

func (b *Backends) openLocker(ctx context.Context, cfg config.Config) (lock.Locker, error) {
	switch cfg.LockBackend {
	case config.BackendPostgres:
		pool, err := b.postgres(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return repo.NewAdvisoryLocker(pool), nil

	case config.BackendRedis:
		client, err := b.redisClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return rediskv.NewLocker(client,
			rediskv.WithPrefix(cfg.RedisPrefix),
			rediskv.WithLockTTL(cfg.RedisLockTTL),
		), nil

	case config.BackendMemory:
		return lock.NewMemoryLocker(), nil
	}

	return nil, config.ErrUnknownBackend
}

func (b *Backends) postgres(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if b.pool != nil {
		return b.pool, nil
	}

	pool, err := repo.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return nil, err
	}
	b.pool = pool
	b.closers = append(b.closers, func() error {
		pool.Close()
		return nil
	})
	return pool, nil
}

func (b *Backends) redisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b.redis = client
	b.closers = append(b.closers, client.Close)
	return client, nil
}

// Ping проверяет доступность сетевых backend'ов. Используется в /healthz.
func (b *Backends) Ping(ctx context.Context) error {
	if b.pool != nil {
		if err := b.pool.Ping(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	if b.redis != nil {
		if err := b.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Close закрывает соединения в обратном порядке.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
