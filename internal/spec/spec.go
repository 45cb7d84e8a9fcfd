package spec

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shaiso/syncron/internal/recurrence"
)

// Kind — форма расписания.
type Kind int

const (
	// KindCron — cron-выражение.
	KindCron Kind = iota + 1

	// KindRecurrence — recurrence.Rule.
	KindRecurrence

	// KindOneOff — абсолютная дата.
	KindOneOff
)

// String возвращает имя формы.
func (k Kind) String() string {
	switch k {
	case KindCron:
		return "cron"
	case KindRecurrence:
		return "recurrence"
	case KindOneOff:
		return "oneoff"
	default:
		return "unknown"
	}
}

// cronParser — парсер cron-выражений: 5 полей, опциональные секунды
// первым полем и дескрипторы (@hourly, @every 5m).
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Firing — результат адаптера для одного срабатывания таймера.
type Firing struct {
	// NextExecution — timestamp выполнения в миллисекундах.
	NextExecution int64

	// Recurring — true для cron и повторяющихся правил.
	Recurring bool
}

// Time возвращает NextExecution как time.Time (UTC).
func (f Firing) Time() time.Time {
	return time.UnixMilli(f.NextExecution).UTC()
}

// Spec — расписание job. Нулевое значение невалидно, используйте
// Cron, Recurrence, At или Parse.
type Spec struct {
	kind Kind

	expr     string
	schedule cron.Schedule

	rule   recurrence.Rule
	pinned time.Time // единственное срабатывание правила с Once

	at time.Time
}

// Cron создаёт расписание из cron-выражения.
func Cron(expr string) (Spec, error) {
	expr = strings.TrimSpace(expr)
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return Spec{}, fmt.Errorf("%w %q: %w", ErrInvalidCron, expr, err)
	}
	return Spec{kind: KindCron, expr: expr, schedule: sched}, nil
}

// Recurrence создаёт расписание из правила.
//
// Правило с Once закрепляется за первым срабатыванием после now (или,
// если задан rule.Start, не раньше Start): все его срабатывания
// сравниваются guard'ом с одним и тем же timestamp. Без Start инстансы,
// стартовавшие по разные стороны срабатывания, закрепят разные даты.
func Recurrence(rule recurrence.Rule, now time.Time) (Spec, error) {
	sched, err := rule.Schedule()
	if err != nil {
		return Spec{}, err
	}

	s := Spec{kind: KindRecurrence, rule: rule, schedule: sched}
	if !rule.Recurs() {
		from := now
		if !rule.Start.IsZero() {
			// Next ищет строго после момента; срабатывание ровно в Start подходит
			from = rule.Start.Add(-time.Nanosecond)
		}
		s.pinned = sched.Next(from).Truncate(time.Second)
		if s.pinned.IsZero() {
			return Spec{}, ErrNoOccurrence
		}
	}
	return s, nil
}

// At создаёт одноразовое расписание на дату t.
func At(t time.Time) Spec {
	return Spec{kind: KindOneOff, at: t}
}

// Parse определяет форму расписания по типу значения:
// string — cron, recurrence.Rule — правило, time.Time — дата.
func Parse(v any, now time.Time) (Spec, error) {
	switch x := v.(type) {
	case Spec:
		if x.kind == 0 {
			return Spec{}, ErrUnsupportedSpec
		}
		return x, nil
	case string:
		return Cron(x)
	case recurrence.Rule:
		return Recurrence(x, now)
	case *recurrence.Rule:
		if x == nil {
			return Spec{}, ErrUnsupportedSpec
		}
		return Recurrence(*x, now)
	case time.Time:
		return At(x), nil
	case *time.Time:
		if x == nil {
			return Spec{}, ErrUnsupportedSpec
		}
		return At(*x), nil
	default:
		return Spec{}, fmt.Errorf("%w: %T", ErrUnsupportedSpec, v)
	}
}

// Kind возвращает форму расписания.
func (s Spec) Kind() Kind {
	return s.kind
}

// Recurring возвращает true, если расписание даёт больше одного срабатывания.
func (s Spec) Recurring() bool {
	switch s.kind {
	case KindCron:
		return true
	case KindRecurrence:
		return s.rule.Recurs()
	default:
		return false
	}
}

// Next вычисляет Firing для срабатывания в момент now.
//
//   - cron: следующее время строго после now
//   - правило: NextInvocationDate(now) с точностью до секунды,
//     для Once — закреплённое время
//   - дата: сама дата
func (s Spec) Next(now time.Time) (Firing, error) {
	switch s.kind {
	case KindCron:
		next := s.schedule.Next(now)
		if next.IsZero() {
			return Firing{}, ErrNoOccurrence
		}
		return Firing{NextExecution: next.UnixMilli(), Recurring: true}, nil

	case KindRecurrence:
		if !s.rule.Recurs() {
			return Firing{NextExecution: s.pinned.UnixMilli(), Recurring: false}, nil
		}
		next := s.rule.NextInvocationDate(now).Truncate(time.Second)
		if next.IsZero() {
			return Firing{}, ErrNoOccurrence
		}
		return Firing{NextExecution: next.UnixMilli(), Recurring: true}, nil

	case KindOneOff:
		return Firing{NextExecution: s.at.UnixMilli(), Recurring: false}, nil

	default:
		return Firing{}, ErrUnsupportedSpec
	}
}

// Schedule возвращает cron.Schedule для локального таймера.
func (s Spec) Schedule() cron.Schedule {
	switch s.kind {
	case KindCron:
		return s.schedule
	case KindRecurrence:
		if !s.rule.Recurs() {
			return onceSchedule{at: s.pinned}
		}
		return s.schedule
	case KindOneOff:
		return onceSchedule{at: s.at}
	default:
		return onceSchedule{}
	}
}

// Expired возвращает true, если одноразовое расписание уже в прошлом.
func (s Spec) Expired(now time.Time) bool {
	switch {
	case s.kind == KindOneOff:
		return !s.at.After(now)
	case s.kind == KindRecurrence && !s.rule.Recurs():
		return !s.pinned.After(now)
	default:
		return false
	}
}

// String возвращает описание расписания для логов и CLI.
func (s Spec) String() string {
	switch s.kind {
	case KindCron:
		return "cron(" + s.expr + ")"
	case KindRecurrence:
		if !s.rule.Recurs() {
			return "rule(once at " + s.pinned.UTC().Format(time.RFC3339) + ")"
		}
		return "rule"
	case KindOneOff:
		return "at(" + s.at.UTC().Format(time.RFC3339Nano) + ")"
	default:
		return "invalid"
	}
}

// onceSchedule срабатывает один раз в момент at.
// Нулевое время от Next означает для robfig/cron "больше никогда".
type onceSchedule struct {
	at time.Time
}

func (o onceSchedule) Next(t time.Time) time.Time {
	if o.at.After(t) {
		return o.at
	}
	return time.Time{}
}
