package spec

import (
	"errors"
	"testing"
	"time"

	"github.com/shaiso/syncron/internal/recurrence"
)

var base = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func TestParse_Dispatch(t *testing.T) {
	at := base.Add(time.Hour)
	rule := recurrence.Rule{Minute: []int{0}, Location: time.UTC}

	tests := []struct {
		name string
		in   any
		want Kind
	}{
		{"cron string", "0 * * * *", KindCron},
		{"cron with seconds", "30 0 * * * *", KindCron},
		{"descriptor", "@hourly", KindCron},
		{"rule value", rule, KindRecurrence},
		{"rule pointer", &rule, KindRecurrence},
		{"date value", at, KindOneOff},
		{"date pointer", &at, KindOneOff},
		{"spec", At(at), KindOneOff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse(tt.in, base)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Kind() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, s.Kind())
			}
		})
	}
}

func TestParse_Unsupported(t *testing.T) {
	var nilRule *recurrence.Rule
	var nilTime *time.Time

	for _, in := range []any{42, nil, nilRule, nilTime, Spec{}} {
		if _, err := Parse(in, base); !errors.Is(err, ErrUnsupportedSpec) {
			t.Errorf("Parse(%#v): expected ErrUnsupportedSpec, got %v", in, err)
		}
	}
}

func TestCron_Invalid(t *testing.T) {
	_, err := Cron("not a cron")
	if !errors.Is(err, ErrInvalidCron) {
		t.Errorf("expected ErrInvalidCron, got %v", err)
	}
}

func TestNext_Cron(t *testing.T) {
	s, err := Cron("0 * * * *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Таймер срабатывает в 12:00:00.004 — следующее время строго после now
	f, err := s.Next(base.Add(4 * time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := base.Add(time.Hour)
	if f.NextExecution != want.UnixMilli() {
		t.Errorf("expected %v, got %v", want, f.Time())
	}
	if !f.Recurring {
		t.Error("cron firing should be recurring")
	}
}

func TestNext_CronNoOccurrence(t *testing.T) {
	s, err := Cron("0 0 30 2 *")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Next(base); !errors.Is(err, ErrNoOccurrence) {
		t.Errorf("expected ErrNoOccurrence, got %v", err)
	}
}

func TestNext_RecurrenceTruncatesToSecond(t *testing.T) {
	s, err := Recurrence(recurrence.Rule{Minute: []int{30}, Location: time.UTC}, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := s.Next(base.Add(250 * time.Millisecond))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := base.Add(30 * time.Minute)
	if f.NextExecution != want.UnixMilli() {
		t.Errorf("expected %v, got %v", want, f.Time())
	}
	if f.NextExecution%1000 != 0 {
		t.Errorf("expected whole seconds, got %d", f.NextExecution)
	}
	if !f.Recurring {
		t.Error("rule should be recurring")
	}
}

func TestNext_RecurrenceOncePinned(t *testing.T) {
	rule := recurrence.Rule{Hour: []int{13}, Minute: []int{0}, Location: time.UTC, Once: true}
	s, err := Recurrence(rule, base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := base.Add(time.Hour).UnixMilli()

	// До и после срабатывания — один и тот же timestamp
	for _, now := range []time.Time{base, base.Add(time.Hour + time.Millisecond), base.Add(48 * time.Hour)} {
		f, err := s.Next(now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.NextExecution != want || f.Recurring {
			t.Errorf("at %v: expected pinned one-off %d, got %+v", now, want, f)
		}
	}

	if s.Recurring() {
		t.Error("once rule should not be recurring")
	}
}

func TestRecurrence_OnceAnchoredToStart(t *testing.T) {
	start := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)
	rule := recurrence.Rule{Hour: []int{13}, Minute: []int{0}, Location: time.UTC, Once: true, Start: start}

	// Инстанс, стартовавший до срабатывания, и инстанс, стартовавший
	// после него, закрепляют одну и ту же дату
	early, err := Recurrence(rule, start.Add(-time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	late, err := Recurrence(rule, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fe, _ := early.Next(start.Add(-time.Hour))
	fl, _ := late.Next(start.Add(time.Hour))
	if fe.NextExecution != start.UnixMilli() || fl.NextExecution != start.UnixMilli() {
		t.Errorf("expected both pinned to %d, got %d and %d", start.UnixMilli(), fe.NextExecution, fl.NextExecution)
	}

	// Опоздавший инстанс видит, что срабатывание уже прошло
	if early.Expired(start.Add(-time.Hour)) {
		t.Error("early instance should not see the occurrence as expired")
	}
	if !late.Expired(start.Add(time.Hour)) {
		t.Error("late instance should see the occurrence as expired")
	}
}

func TestRecurrence_Invalid(t *testing.T) {
	_, err := Recurrence(recurrence.Rule{Hour: []int{25}}, base)
	if !errors.Is(err, recurrence.ErrInvalidRule) {
		t.Errorf("expected ErrInvalidRule, got %v", err)
	}

	_, err = Recurrence(recurrence.Rule{DayOfMonth: []int{31}, Month: []int{2}, Once: true}, base)
	if !errors.Is(err, ErrNoOccurrence) {
		t.Errorf("expected ErrNoOccurrence, got %v", err)
	}
}

func TestNext_OneOff(t *testing.T) {
	at := time.Date(2026, 12, 31, 23, 59, 59, 123_000_000, time.UTC)
	s := At(at)

	f, err := s.Next(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.NextExecution != at.UnixMilli() {
		t.Errorf("expected %d, got %d", at.UnixMilli(), f.NextExecution)
	}
	if f.Recurring {
		t.Error("one-off firing should not be recurring")
	}
}

func TestSchedule_OneOffFiresOnce(t *testing.T) {
	at := base.Add(time.Minute)
	sched := At(at).Schedule()

	if got := sched.Next(base); !got.Equal(at) {
		t.Errorf("expected %v, got %v", at, got)
	}
	if got := sched.Next(at); !got.IsZero() {
		t.Errorf("expected no more occurrences, got %v", got)
	}
}

func TestSchedule_Cron(t *testing.T) {
	s, _ := Cron("*/15 * * * *")
	got := s.Schedule().Next(base)
	if !got.Equal(base.Add(15 * time.Minute)) {
		t.Errorf("expected 12:15, got %v", got)
	}
}

func TestExpired(t *testing.T) {
	if !At(base.Add(-time.Second)).Expired(base) {
		t.Error("past date should be expired")
	}
	if At(base.Add(time.Second)).Expired(base) {
		t.Error("future date should not be expired")
	}
	s, _ := Cron("@daily")
	if s.Expired(base) {
		t.Error("cron is never expired")
	}
}

func TestString(t *testing.T) {
	s, _ := Cron("0 * * * *")
	if s.String() != "cron(0 * * * *)" {
		t.Errorf("unexpected %q", s.String())
	}
	if got := At(base).String(); got != "at(2026-10-19T12:00:00Z)" {
		t.Errorf("unexpected %q", got)
	}
}
