// Package timer — локальный таймер процесса поверх robfig/cron/v3.
//
// Таймер ничего не знает о других инстансах: каждый процесс вызывает
// callback в моменты, которые даёт cron.Schedule. Дедупликацию между
// инстансами делает guard, обёрнутый в callback.
package timer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrEmptyName — job без имени.
var ErrEmptyName = errors.New("empty timer entry name")

// Timer — реестр именованных записей robfig/cron.
type Timer struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// New создаёт остановленный Timer.
func New(logger *slog.Logger) *Timer {
	if logger == nil {
		logger = slog.Default()
	}
	cl := cronLogger{logger: logger}

	return &Timer{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		logger:  logger,
		entries: make(map[string]cron.EntryID),
	}
}

// Schedule регистрирует callback под именем name.
// Если имя уже занято, предыдущая запись удаляется: побеждает последняя регистрация.
func (t *Timer) Schedule(name string, sched cron.Schedule, callback func()) (*Handle, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.entries[name]; ok {
		t.cron.Remove(prev)
		t.logger.Warn("timer entry replaced", "job", name)
	}

	id := t.cron.Schedule(sched, cron.FuncJob(callback))
	t.entries[name] = id

	return &Handle{name: name, id: id, timer: t}, nil
}

// Cancel удаляет запись name. Возвращает false, если её не было.
func (t *Timer) Cancel(name string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, ok := t.entries[name]
	if !ok {
		return false
	}
	t.cron.Remove(id)
	delete(t.entries, name)
	return true
}

// cancelEntry удаляет запись, только если name всё ещё указывает на id.
func (t *Timer) cancelEntry(name string, id cron.EntryID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cur, ok := t.entries[name]; !ok || cur != id {
		return false
	}
	t.cron.Remove(id)
	delete(t.entries, name)
	return true
}

// Next возвращает ближайшее срабатывание записи name.
// Нулевое время — записи нет, таймер не запущен или срабатываний больше не будет.
func (t *Timer) Next(name string) time.Time {
	t.mu.Lock()
	id, ok := t.entries[name]
	t.mu.Unlock()

	if !ok {
		return time.Time{}
	}
	return t.cron.Entry(id).Next
}

// Names возвращает имена зарегистрированных записей.
func (t *Timer) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	return names
}

// Start запускает таймер в отдельной горутине.
func (t *Timer) Start() {
	t.cron.Start()
}

// Stop останавливает таймер. Возвращённый контекст завершается,
// когда закончатся уже запущенные callback'и.
func (t *Timer) Stop() context.Context {
	return t.cron.Stop()
}

// Handle — регистрация job в локальном таймере.
type Handle struct {
	name  string
	id    cron.EntryID
	timer *Timer
}

// Name возвращает имя job.
func (h *Handle) Name() string {
	return h.name
}

// Next возвращает ближайшее локальное срабатывание.
func (h *Handle) Next() time.Time {
	return h.timer.cron.Entry(h.id).Next
}

// Cancel останавливает будущие срабатывания на этом инстансе.
// Если под тем же именем уже зарегистрирована другая запись, она не затрагивается.
func (h *Handle) Cancel() bool {
	return h.timer.cancelEntry(h.name, h.id)
}

// cronLogger адаптирует slog к cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
