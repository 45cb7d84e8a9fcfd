package api

import (
	"context"
	"log/slog"

	"github.com/shaiso/syncron/internal/scheduler"
	"github.com/shaiso/syncron/internal/watermark"
)

// Registry — jobs, зарегистрированные на инстансе. Реализуется *scheduler.Scheduler.
type Registry interface {
	Jobs() []scheduler.JobInfo
	Cancel(name string) bool
}

// Pinger проверяет доступность backend'ов.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler — главный обработчик API с зависимостями.
type Handler struct {
	registry Registry
	store    watermark.Admin
	pinger   Pinger
	instance string
	logger   *slog.Logger
}

// Config — конфигурация для создания Handler.
type Config struct {
	Registry Registry
	Store    watermark.Admin
	Pinger   Pinger // опционально
	Instance string
	Logger   *slog.Logger
}

// NewHandler создаёт новый Handler.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		registry: cfg.Registry,
		store:    cfg.Store,
		pinger:   cfg.Pinger,
		instance: cfg.Instance,
		logger:   logger,
	}
}
