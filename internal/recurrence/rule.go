// Package recurrence описывает правило повторения — альтернативу
// cron-строке в виде структуры с наборами допустимых значений полей.
//
// Пустой набор означает "любое значение", кроме Second: по умолчанию
// правило срабатывает на нулевой секунде. Правило может описывать
// единственное срабатывание (Once), тогда Recurs() == false.
//
//	rule := recurrence.Rule{
//	    Hour:      []int{9},
//	    Minute:    []int{30},
//	    DayOfWeek: []int{1, 2, 3, 4, 5},
//	    Location:  moscow,
//	}
//	next := rule.NextInvocationDate(time.Now())
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// starBit — тот же флаг "*", что robfig/cron ставит в Dom/Dow:
// если одно из полей не ограничено, дни сочетаются через AND, иначе через OR.
const starBit = 1 << 63

// ErrInvalidRule — значение поля вне допустимого диапазона.
var ErrInvalidRule = errors.New("invalid recurrence rule")

// Rule — правило повторения.
type Rule struct {
	// Second — секунды 0-59. По умолчанию [0].
	Second []int `json:"second,omitempty" yaml:"second,omitempty"`

	// Minute — минуты 0-59.
	Minute []int `json:"minute,omitempty" yaml:"minute,omitempty"`

	// Hour — часы 0-23.
	Hour []int `json:"hour,omitempty" yaml:"hour,omitempty"`

	// DayOfMonth — дни месяца 1-31.
	DayOfMonth []int `json:"day_of_month,omitempty" yaml:"day_of_month,omitempty"`

	// Month — месяцы 1-12.
	Month []int `json:"month,omitempty" yaml:"month,omitempty"`

	// DayOfWeek — дни недели 0-6, 0 — воскресенье.
	DayOfWeek []int `json:"day_of_week,omitempty" yaml:"day_of_week,omitempty"`

	// Location — часовой пояс. nil — локальный.
	Location *time.Location `json:"-" yaml:"-"`

	// Once — правило срабатывает один раз, в первое подходящее время.
	Once bool `json:"once,omitempty" yaml:"once,omitempty"`

	// Start — для Once: срабатывание ищется начиная со Start (включительно),
	// а не с момента регистрации. Одинаковый Start на всех инстансах даёт
	// им одно и то же срабатывание.
	Start time.Time `json:"start,omitempty" yaml:"-"`
}

type field struct {
	name     string
	values   []int
	min, max int
}

func (r Rule) fields() []field {
	return []field{
		{"second", r.Second, 0, 59},
		{"minute", r.Minute, 0, 59},
		{"hour", r.Hour, 0, 23},
		{"day_of_month", r.DayOfMonth, 1, 31},
		{"month", r.Month, 1, 12},
		{"day_of_week", r.DayOfWeek, 0, 6},
	}
}

// Validate проверяет диапазоны всех полей.
func (r Rule) Validate() error {
	for _, f := range r.fields() {
		for _, v := range f.values {
			if v < f.min || v > f.max {
				return fmt.Errorf("%w: %s=%d out of range [%d, %d]", ErrInvalidRule, f.name, v, f.min, f.max)
			}
		}
	}
	return nil
}

// Recurs возвращает true, если правило даёт больше одного срабатывания.
func (r Rule) Recurs() bool {
	return !r.Once
}

// Schedule строит cron.SpecSchedule, эквивалентный правилу.
func (r Rule) Schedule() (*cron.SpecSchedule, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	second := r.Second
	if len(second) == 0 {
		second = []int{0}
	}

	loc := r.Location
	if loc == nil {
		loc = time.Local
	}

	return &cron.SpecSchedule{
		Second:   bits(second, 0, 59, false),
		Minute:   bits(r.Minute, 0, 59, false),
		Hour:     bits(r.Hour, 0, 23, false),
		Dom:      bits(r.DayOfMonth, 1, 31, true),
		Month:    bits(r.Month, 1, 12, false),
		Dow:      bits(r.DayOfWeek, 0, 6, true),
		Location: loc,
	}, nil
}

// NextInvocationDate возвращает первое срабатывание строго после after.
// Нулевое время — срабатываний нет (невалидное правило или дата,
// которая не наступает в ближайшие пять лет, например 30 февраля).
func (r Rule) NextInvocationDate(after time.Time) time.Time {
	sched, err := r.Schedule()
	if err != nil {
		return time.Time{}
	}
	return sched.Next(after)
}

// bits переводит набор значений в битовую маску robfig/cron.
// Пустой набор — все значения диапазона; для дней ещё и starBit.
func bits(values []int, min, max int, star bool) uint64 {
	var b uint64
	if len(values) == 0 {
		for v := min; v <= max; v++ {
			b |= 1 << uint(v)
		}
		if star {
			b |= starBit
		}
		return b
	}
	for _, v := range values {
		b |= 1 << uint(v)
	}
	return b
}
