package timer

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// everySchedule срабатывает каждые d (robfig/cron не ограничивает точность секундами
// для пользовательских расписаний).
type everySchedule struct{ d time.Duration }

func (e everySchedule) Next(t time.Time) time.Time { return t.Add(e.d) }

func newTestTimer() *Timer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTimer_FiresCallback(t *testing.T) {
	tm := newTestTimer()
	tm.Start()
	defer tm.Stop()

	var calls int32
	if _, err := tm.Schedule("tick", everySchedule{20 * time.Millisecond}, func() {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 2 })
}

func TestTimer_HandleCancelStopsFirings(t *testing.T) {
	tm := newTestTimer()
	tm.Start()
	defer tm.Stop()

	var calls int32
	h, err := tm.Schedule("tick", everySchedule{10 * time.Millisecond}, func() {
		atomic.AddInt32(&calls, 1)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) >= 1 })

	if !h.Cancel() {
		t.Fatal("expected cancel to remove entry")
	}
	if h.Cancel() {
		t.Error("second cancel should be a no-op")
	}

	// Даём догореть уже запущенному срабатыванию
	time.Sleep(30 * time.Millisecond)
	after := atomic.LoadInt32(&calls)
	time.Sleep(60 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != after {
		t.Errorf("expected no firings after cancel, got %d more", got-after)
	}
}

func TestTimer_LastRegistrationWins(t *testing.T) {
	tm := newTestTimer()
	tm.Start()
	defer tm.Stop()

	var first, second int32
	h1, _ := tm.Schedule("job", everySchedule{10 * time.Millisecond}, func() { atomic.AddInt32(&first, 1) })
	_, _ = tm.Schedule("job", everySchedule{10 * time.Millisecond}, func() { atomic.AddInt32(&second, 1) })

	waitFor(t, func() bool { return atomic.LoadInt32(&second) >= 2 })

	if len(tm.Names()) != 1 {
		t.Errorf("expected single entry, got %v", tm.Names())
	}

	// Старый handle не должен снимать новую запись
	if h1.Cancel() {
		t.Error("stale handle should not cancel replacement")
	}
	if tm.Next("job").IsZero() {
		t.Error("replacement entry should still be scheduled")
	}
}

func TestTimer_CancelByName(t *testing.T) {
	tm := newTestTimer()

	_, _ = tm.Schedule("job", everySchedule{time.Hour}, func() {})
	if !tm.Cancel("job") {
		t.Error("expected cancel to succeed")
	}
	if tm.Cancel("job") {
		t.Error("expected second cancel to fail")
	}
}

func TestTimer_EmptyName(t *testing.T) {
	_, err := newTestTimer().Schedule("", everySchedule{time.Second}, func() {})
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}
