// syncron-scheduler — daemon, выполняющий jobs из JOBS_FILE ровно один раз
// на срабатывание в масштабах всех инстансов.
//
// Каждый инстанс запускает одинаковый набор jobs; дубликаты отсекаются
// распределённым локом и watermark'ом в общем хранилище.
//
// HTTP:
//
//	/healthz            доступность backend'ов
//	/api/v1/jobs        зарегистрированные jobs и ближайшие срабатывания
//	/api/v1/watermarks  watermark'и в общем хранилище
//	/metrics            Prometheus
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/syncron/internal/api"
	"github.com/shaiso/syncron/internal/backend"
	"github.com/shaiso/syncron/internal/config"
	"github.com/shaiso/syncron/internal/guard"
	"github.com/shaiso/syncron/internal/jobfile"
	"github.com/shaiso/syncron/internal/mq"
	"github.com/shaiso/syncron/internal/scheduler"
	"github.com/shaiso/syncron/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting syncron-scheduler")

	if err := run(logger); err != nil {
		logger.Error("syncron-scheduler failed", "error", err)
		os.Exit(1)
	}
	logger.Info("syncron-scheduler stopped")
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// instance добавляют в логи scheduler и api
	logger.Info("config loaded",
		"instance", cfg.InstanceID,
		"store", cfg.StoreBackend,
		"lock", cfg.LockBackend,
	)

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	jobs, err := jobfile.Load(cfg.JobsFile)
	if err != nil {
		return err
	}

	backends, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close()

	// RabbitMQ — опционально: события claimed и действие publish
	var notifier guard.Notifier
	var publisher jobfile.FiredPublisher
	if cfg.RabbitMQURL != "" {
		conn, err := mq.NewConnection(cfg.RabbitMQURL, cfg.InstanceID, logger)
		if err != nil {
			logger.Warn("RabbitMQ not available, job events disabled", "error", err)
		} else {
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology", "error", err)
			}
			logger.Debug("rabbitmq topology", "info", mq.TopologyInfo())

			p := mq.NewPublisher(conn, logger)
			notifier = p
			publisher = p
		}
	}

	sched, err := scheduler.New(scheduler.Config{
		Store:    backends.Store,
		Locker:   backends.Locker,
		Logger:   logger,
		Metrics:  telemetry.NewMetrics(prometheus.DefaultRegisterer),
		Notifier: notifier,
		LockWait: cfg.LockWaitTimeout,
		Instance: cfg.InstanceID,
	})
	if err != nil {
		return err
	}

	for _, j := range jobs.Jobs {
		sp, err := j.Spec()
		if err != nil {
			return err
		}
		action, err := j.Action(cfg.InstanceID, publisher)
		if err != nil {
			return err
		}
		if _, err := sched.ScheduleJob(j.Name, sp, action); err != nil {
			if errors.Is(err, scheduler.ErrExpired) {
				// Прошедшая одноразовая дата — не повод не стартовать
				logger.Warn("skipping expired job", "job", j.Name)
				continue
			}
			return err
		}
	}

	sched.Start()
	logger.Info("jobs registered", "count", len(sched.Jobs()), "file", cfg.JobsFile)

	// HTTP mux: /healthz + /api/v1 + /metrics
	mux := http.NewServeMux()
	api.NewHandler(api.Config{
		Registry: sched,
		Store:    backends.Store,
		Pinger:   backends,
		Instance: cfg.InstanceID,
		Logger:   logger,
	}).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", "error", err)
	}

	// Ждём in-flight срабатывания
	return sched.Stop(shutdownCtx)
}
