// Package config собирает конфигурацию syncron-scheduler из переменных окружения.
//
// Все переменные опциональны: значения по умолчанию подходят для
// локальной разработки (docker-compose с PostgreSQL, Redis и RabbitMQ).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Backend — реализация хранилища или лока.
type Backend string

// Поддерживаемые backend'ы.
const (
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendSQLite   Backend = "sqlite"
	BackendMemory   Backend = "memory"
)

// Ошибки конфигурации.
var (
	// ErrUnknownBackend — неизвестное значение STORE_BACKEND или LOCK_BACKEND.
	ErrUnknownBackend = errors.New("unknown backend")

	// ErrInvalidValue — значение переменной не распарсилось.
	ErrInvalidValue = errors.New("invalid config value")
)

// Config — конфигурация daemon'а.
type Config struct {
	// StoreBackend — хранилище watermark'ов (STORE_BACKEND, default: postgres).
	StoreBackend Backend

	// LockBackend — распределённый лок (LOCK_BACKEND, default: как StoreBackend,
	// для sqlite — memory).
	LockBackend Backend

	// DBURL — DSN PostgreSQL (DB_URL).
	DBURL string

	// DBMaxConns — размер пула (DB_MAX_CONNS, default: 10).
	DBMaxConns int32

	// RedisURL — адрес Redis в формате redis:// (REDIS_URL).
	RedisURL string

	// RedisPrefix — префикс ключей (REDIS_PREFIX, default: "syncron:").
	RedisPrefix string

	// RedisLockTTL — TTL лока в Redis (REDIS_LOCK_TTL, default: 30s).
	RedisLockTTL time.Duration

	// SQLitePath — файл SQLite (SQLITE_PATH, default: syncron.db).
	SQLitePath string

	// RabbitMQURL — AMQP URL (RABBITMQ_URL). Пустое значение — события не публикуются.
	RabbitMQURL string

	// JobsFile — YAML с описанием jobs (JOBS_FILE, default: jobs.yaml).
	JobsFile string

	// Port — порт /healthz и /metrics (SCHED_PORT, default: 8081).
	Port string

	// LockWaitTimeout — ожидание лока (LOCK_WAIT_TIMEOUT, default: 0 — без ограничения).
	LockWaitTimeout time.Duration

	// ShutdownTimeout — ожидание in-flight срабатываний при остановке
	// (SHUTDOWN_TIMEOUT, default: 30s).
	ShutdownTimeout time.Duration

	// InstanceID — идентификатор инстанса (INSTANCE_ID, default: hostname-<uuid8>).
	InstanceID string
}

// Load читает конфигурацию из окружения процесса.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom читает конфигурацию через getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}

	cfg := Config{
		StoreBackend: Backend(env("STORE_BACKEND", string(BackendPostgres))),
		DBURL:        getenv("DB_URL"),
		RedisURL:     env("REDIS_URL", "redis://localhost:6379/0"),
		RedisPrefix:  env("REDIS_PREFIX", "syncron:"),
		SQLitePath:   env("SQLITE_PATH", "syncron.db"),
		RabbitMQURL:  getenv("RABBITMQ_URL"),
		JobsFile:     env("JOBS_FILE", "jobs.yaml"),
		Port:         env("SCHED_PORT", "8081"),
		InstanceID:   getenv("INSTANCE_ID"),
	}

	defaultLock := cfg.StoreBackend
	if defaultLock == BackendSQLite {
		defaultLock = BackendMemory
	}
	cfg.LockBackend = Backend(env("LOCK_BACKEND", string(defaultLock)))

	var err error
	if cfg.RedisLockTTL, err = duration(getenv, "REDIS_LOCK_TTL", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LockWaitTimeout, err = duration(getenv, "LOCK_WAIT_TIMEOUT", 0); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = duration(getenv, "SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	maxConns := int64(10)
	if v := getenv("DB_MAX_CONNS"); v != "" {
		maxConns, err = strconv.ParseInt(v, 10, 32)
		if err != nil || maxConns <= 0 {
			return Config{}, fmt.Errorf("%w: DB_MAX_CONNS=%q", ErrInvalidValue, v)
		}
	}
	cfg.DBMaxConns = int32(maxConns)

	if cfg.InstanceID == "" {
		cfg.InstanceID = defaultInstanceID()
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет сочетание backend'ов.
func (c Config) Validate() error {
	switch c.StoreBackend {
	case BackendPostgres, BackendRedis, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: STORE_BACKEND=%q", ErrUnknownBackend, c.StoreBackend)
	}

	switch c.LockBackend {
	case BackendPostgres, BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("%w: LOCK_BACKEND=%q", ErrUnknownBackend, c.LockBackend)
	}

	return nil
}

// Uses возвращает true, если хранилище или лок использует backend b.
func (c Config) Uses(b Backend) bool {
	return c.StoreBackend == b || c.LockBackend == b
}

func duration(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidValue, key, v)
	}
	return d, nil
}

func defaultInstanceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "syncron"
	}
	return host + "-" + uuid.NewString()[:8]
}
