package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shaiso/syncron/internal/lock"
	"github.com/shaiso/syncron/internal/spec"
	"github.com/shaiso/syncron/internal/telemetry"
	"github.com/shaiso/syncron/internal/watermark"
)

// Action — действие job. Ошибка не повторяется и наружу не выходит.
type Action func(ctx context.Context) error

// Outcome — исход одного срабатывания.
type Outcome string

// Исходы срабатывания.
const (
	OutcomeRan        Outcome = "ran"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeFailed     Outcome = "failed"
	OutcomeLockError  Outcome = "lock_error"
	OutcomeStoreError Outcome = "store_error"
)

// Claim — факт того, что инстанс занял срабатывание.
type Claim struct {
	Job           string    `json:"job"`
	NextExecution int64     `json:"next_execution"`
	Instance      string    `json:"instance"`
	ClaimedAt     time.Time `json:"claimed_at"`
}

// Notifier получает уведомление о занятом срабатывании до вызова действия.
// Ошибка Notifier'а логируется и не мешает выполнению.
type Notifier interface {
	NotifyClaimed(ctx context.Context, claim Claim) error
}

// Config — конфигурация Guard.
type Config struct {
	Store    watermark.Store
	Locker   lock.Locker
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics
	Notifier Notifier // опционально

	// Clock — источник текущего времени (default: time.Now).
	Clock func() time.Time

	// LockWait — максимальное ожидание лока. 0 — ждать бесконечно.
	LockWait time.Duration

	// Instance — идентификатор инстанса для логов и Claim.
	Instance string
}

// Guard — Dedup Guard.
type Guard struct {
	store    watermark.Store
	locker   lock.Locker
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	notifier Notifier
	clock    func() time.Time
	lockWait time.Duration
	instance string
}

// New создаёт Guard.
func New(cfg Config) *Guard {
	g := &Guard{
		store:    cfg.Store,
		locker:   cfg.Locker,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		notifier: cfg.Notifier,
		clock:    cfg.Clock,
		lockWait: cfg.LockWait,
		instance: cfg.Instance,
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.metrics == nil {
		g.metrics = telemetry.NewMetrics(nil)
	}
	if g.clock == nil {
		g.clock = time.Now
	}
	return g
}

// LockName возвращает имя распределённого лока для job.
func LockName(job string) string {
	return job + "Lock"
}

// ShouldRun — предикат дедупликации.
//
// Для повторяющегося job watermark — это время срабатывания, которое
// сейчас наступает. Срабатывание в ту же миллисекунду (wm == now) должно
// выполниться; дубликат того же срабатывания видит уже следующий wm > now.
func ShouldRun(wm int64, present bool, f spec.Firing, now time.Time) bool {
	if !present {
		return true
	}
	if f.Recurring {
		return wm <= now.UnixMilli()
	}
	return wm != f.NextExecution
}

// Run выполняет протокол дедупликации для одного срабатывания.
func (g *Guard) Run(ctx context.Context, job string, f spec.Firing, action Action) Outcome {
	logger := telemetry.WithJob(g.logger, job).With("next_execution", f.NextExecution)

	claimed, err := g.claim(ctx, job, f)

	if !claimed {
		outcome := OutcomeSkipped
		switch {
		case err == nil:
			logger.Debug("occurrence already claimed, skipping")
		case errors.Is(err, ErrStore):
			outcome = OutcomeStoreError
			logger.Error("watermark check failed, firing dropped", "error", err)
		case errors.Is(err, lock.ErrUnlock):
			logger.Warn("occurrence already claimed, lock release failed", "error", err)
		default:
			outcome = OutcomeLockError
			logger.Warn("lock not acquired, firing dropped", "error", err)
		}
		g.metrics.Firings.WithLabelValues(job, string(outcome)).Inc()
		return outcome
	}

	if err != nil {
		// Watermark уже записан — срабатывание наше, несмотря на ошибку отпускания
		logger.Warn("lock release failed after claim", "error", err)
	}

	if g.notifier != nil {
		claim := Claim{
			Job:           job,
			NextExecution: f.NextExecution,
			Instance:      g.instance,
			ClaimedAt:     g.clock().UTC(),
		}
		if err := g.notifier.NotifyClaimed(ctx, claim); err != nil {
			logger.Warn("claim notification failed", "error", err)
		}
	}

	logger.Info("occurrence claimed, running action")

	start := time.Now()
	err = invoke(telemetry.WithLogger(ctx, logger), action)
	g.metrics.ActionDuration.WithLabelValues(job).Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Error("job action failed", "error", err)
		g.metrics.Firings.WithLabelValues(job, string(OutcomeFailed)).Inc()
		return OutcomeFailed
	}

	g.metrics.Firings.WithLabelValues(job, string(OutcomeRan)).Inc()
	return OutcomeRan
}

// claim проверяет и записывает watermark под локом.
// claimed=true означает, что watermark записан этим вызовом.
func (g *Guard) claim(ctx context.Context, job string, f spec.Firing) (claimed bool, err error) {
	start := time.Now()

	err = lock.WithLock(ctx, g.lockerWithWait(), LockName(job), func(ctx context.Context) error {
		g.metrics.LockWait.WithLabelValues(job).Observe(time.Since(start).Seconds())

		wm, present, err := g.store.Get(ctx, job)
		if err != nil {
			return fmt.Errorf("%w: get %q: %w", ErrStore, job, err)
		}

		if !ShouldRun(wm, present, f, g.clock()) {
			return nil
		}

		if err := g.store.Set(ctx, job, f.NextExecution); err != nil {
			return fmt.Errorf("%w: set %q: %w", ErrStore, job, err)
		}
		claimed = true
		return nil
	})

	return claimed, err
}

// lockerWithWait ограничивает ожидание лока, если задан LockWait.
// Таймаут действует только на захват, не на критическую секцию.
func (g *Guard) lockerWithWait() lock.Locker {
	if g.lockWait <= 0 {
		return g.locker
	}
	return lock.LockerFunc(func(ctx context.Context, name string) (lock.Lock, error) {
		waitCtx, cancel := context.WithTimeout(ctx, g.lockWait)
		defer cancel()
		return g.locker.Lock(waitCtx, name)
	})
}

// invoke вызывает действие, превращая панику в ошибку.
func invoke(ctx context.Context, action Action) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrActionPanic, r)
		}
	}()
	return action(ctx)
}
