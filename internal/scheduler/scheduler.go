package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shaiso/syncron/internal/guard"
	"github.com/shaiso/syncron/internal/lock"
	"github.com/shaiso/syncron/internal/spec"
	"github.com/shaiso/syncron/internal/telemetry"
	"github.com/shaiso/syncron/internal/timer"
	"github.com/shaiso/syncron/internal/watermark"
)

// Config — конфигурация Scheduler.
type Config struct {
	Store    watermark.Store
	Locker   lock.Locker
	Logger   *slog.Logger
	Metrics  *telemetry.Metrics // default: незарегистрированные метрики
	Notifier guard.Notifier     // опционально

	// Clock — источник текущего времени (default: time.Now).
	Clock func() time.Time

	// LockWait — максимальное ожидание лока. 0 — ждать бесконечно.
	LockWait time.Duration

	// Instance — идентификатор инстанса для логов и событий.
	Instance string
}

// Job — зарегистрированный job. Неизменяем после регистрации.
type Job struct {
	Name   string
	Spec   spec.Spec
	Action guard.Action
}

// JobInfo — описание job для операторских инструментов.
type JobInfo struct {
	Name string    `json:"name"`
	Kind string    `json:"kind"`
	Spec string    `json:"spec"`
	Next time.Time `json:"next"`
}

// Scheduler — SyncedScheduler.
type Scheduler struct {
	guard   *guard.Guard
	timer   *timer.Timer
	logger  *slog.Logger
	metrics *telemetry.Metrics
	clock   func() time.Time

	// ctx передаётся в guard; отменяется в Stop
	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	jobs map[string]*Job
}

// New создаёт Scheduler. Таймер не запущен до Start.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Store == nil {
		return nil, ErrNoStore
	}
	if cfg.Locker == nil {
		return nil, ErrNoLocker
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Instance != "" {
		logger = telemetry.WithInstance(logger, cfg.Instance)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics(nil)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		guard: guard.New(guard.Config{
			Store:    cfg.Store,
			Locker:   cfg.Locker,
			Logger:   logger,
			Metrics:  metrics,
			Notifier: cfg.Notifier,
			Clock:    clock,
			LockWait: cfg.LockWait,
			Instance: cfg.Instance,
		}),
		timer:   timer.New(logger),
		logger:  logger,
		metrics: metrics,
		clock:   clock,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*Job),
	}, nil
}

// ScheduleJob регистрирует job.
//
// s — cron-строка, recurrence.Rule (или указатель), time.Time (или
// указатель) либо готовый spec.Spec. Повторная регистрация под тем же
// именем заменяет предыдущую на этом инстансе.
func (s *Scheduler) ScheduleJob(name string, sp any, action guard.Action) (*Handle, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if action == nil {
		return nil, ErrNilAction
	}

	now := s.clock()
	parsed, err := spec.Parse(sp, now)
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", name, err)
	}
	if parsed.Expired(now) {
		return nil, fmt.Errorf("job %q %s: %w", name, parsed, ErrExpired)
	}

	job := &Job{Name: name, Spec: parsed, Action: action}

	s.mu.Lock()
	defer s.mu.Unlock()

	th, err := s.timer.Schedule(name, parsed.Schedule(), s.wrap(job))
	if err != nil {
		return nil, fmt.Errorf("job %q: %w", name, err)
	}
	s.jobs[name] = job
	s.metrics.JobsScheduled.Set(float64(len(s.jobs)))

	s.logger.Info("job scheduled",
		"job", name,
		"kind", parsed.Kind().String(),
		"spec", parsed.String(),
		"recurring", parsed.Recurring(),
	)

	return &Handle{Handle: th, scheduler: s, job: job}, nil
}

// wrap строит callback таймера: адаптер расписания, затем guard.
func (s *Scheduler) wrap(job *Job) func() {
	return func() {
		firing, err := job.Spec.Next(s.clock())
		if err != nil {
			s.logger.Error("failed to compute next execution, firing dropped",
				"job", job.Name,
				"spec", job.Spec.String(),
				"error", err,
			)
			return
		}

		s.guard.Run(s.ctx, job.Name, firing, job.Action)
	}
}

// Cancel снимает job name с локального таймера.
func (s *Scheduler) Cancel(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.timer.Cancel(name) {
		return false
	}
	s.forget(name)
	return true
}

// forget удаляет job из реестра; вызывается под s.mu.
func (s *Scheduler) forget(name string) {
	delete(s.jobs, name)
	s.metrics.JobsScheduled.Set(float64(len(s.jobs)))
	s.logger.Info("job cancelled", "job", name)
}

// Jobs возвращает зарегистрированные jobs, отсортированные по имени.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, job := range s.jobs {
		infos = append(infos, JobInfo{
			Name: name,
			Kind: job.Spec.Kind().String(),
			Spec: job.Spec.String(),
			Next: s.timer.Next(name),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Start запускает локальный таймер.
func (s *Scheduler) Start() {
	s.timer.Start()
	s.logger.Info("scheduler started")
}

// Stop останавливает таймер и ждёт завершения запущенных срабатываний,
// но не дольше ctx. Незавершённые срабатывания получают отменённый контекст.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.timer.Stop()
	defer s.cancel()

	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out, in-flight firings cancelled")
		return ctx.Err()
	}
}

// Handle — регистрация job, возвращённая ScheduleJob.
// Встраивает handle локального таймера.
type Handle struct {
	*timer.Handle

	scheduler *Scheduler
	job       *Job
}

// Cancel останавливает будущие локальные срабатывания job.
// Watermark и другие инстансы не затрагиваются.
func (h *Handle) Cancel() bool {
	s := h.scheduler

	s.mu.Lock()
	defer s.mu.Unlock()

	if !h.Handle.Cancel() {
		return false
	}
	if s.jobs[h.job.Name] == h.job {
		s.forget(h.job.Name)
	}
	return true
}
