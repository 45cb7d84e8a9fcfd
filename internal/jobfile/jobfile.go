package jobfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/syncron/internal/recurrence"
)

// ErrInvalidJob — некорректное описание job.
var ErrInvalidJob = errors.New("invalid job definition")

// Типы действий.
const (
	ActionLog     = "log"
	ActionPublish = "publish"
	ActionHTTP    = "http"
)

// File — содержимое jobs-файла.
type File struct {
	Jobs []Job `yaml:"jobs"`
}

// Job — описание одного job.
type Job struct {
	Name   string    `yaml:"name"`
	Cron   string    `yaml:"cron,omitempty"`
	At     string    `yaml:"at,omitempty"`
	Rule   *Rule     `yaml:"rule,omitempty"`
	Action ActionDef `yaml:"action"`
}

// Rule — правило повторения в YAML. Timezone — имя из базы IANA.
type Rule struct {
	Second     []int  `yaml:"second,omitempty"`
	Minute     []int  `yaml:"minute,omitempty"`
	Hour       []int  `yaml:"hour,omitempty"`
	DayOfMonth []int  `yaml:"day_of_month,omitempty"`
	Month      []int  `yaml:"month,omitempty"`
	DayOfWeek  []int  `yaml:"day_of_week,omitempty"`
	Timezone   string `yaml:"timezone,omitempty"`
	Once       bool   `yaml:"once,omitempty"`

	// Start — RFC 3339, для once: искать срабатывание начиная с этого момента.
	Start string `yaml:"start,omitempty"`
}

// ActionDef — что делает job при срабатывании.
type ActionDef struct {
	// Type — log, publish или http (default: log).
	Type string `yaml:"type"`

	// Message — произвольный текст для лога или события.
	Message string `yaml:"message,omitempty"`

	// Поля http-действия.
	URL     string            `yaml:"url,omitempty"`
	Method  string            `yaml:"method,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
}

// Load читает и валидирует файл.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read jobs file: %w", err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse разбирает YAML. Неизвестные поля — ошибка.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate проверяет имена и что у каждого job ровно одно расписание.
func (f *File) Validate() error {
	seen := make(map[string]bool, len(f.Jobs))

	for i := range f.Jobs {
		j := &f.Jobs[i]

		if j.Name == "" {
			return fmt.Errorf("%w: job #%d has no name", ErrInvalidJob, i+1)
		}
		if seen[j.Name] {
			return fmt.Errorf("%w: duplicate job %q", ErrInvalidJob, j.Name)
		}
		seen[j.Name] = true

		n := 0
		if j.Cron != "" {
			n++
		}
		if j.At != "" {
			n++
		}
		if j.Rule != nil {
			n++
		}
		if n != 1 {
			return fmt.Errorf("%w: job %q must have exactly one of cron, rule, at", ErrInvalidJob, j.Name)
		}

		switch j.Action.Type {
		case "":
			j.Action.Type = ActionLog
		case ActionLog, ActionPublish:
		case ActionHTTP:
			if j.Action.URL == "" {
				return fmt.Errorf("%w: job %q: http action requires url", ErrInvalidJob, j.Name)
			}
		default:
			return fmt.Errorf("%w: job %q: unknown action type %q", ErrInvalidJob, j.Name, j.Action.Type)
		}
	}

	return nil
}

// Spec возвращает расписание в форме, которую принимает scheduler.ScheduleJob:
// string (cron), recurrence.Rule или time.Time.
func (j Job) Spec() (any, error) {
	switch {
	case j.Cron != "":
		return j.Cron, nil

	case j.At != "":
		t, err := time.Parse(time.RFC3339, j.At)
		if err != nil {
			return nil, fmt.Errorf("%w: job %q: at: %v", ErrInvalidJob, j.Name, err)
		}
		return t, nil

	case j.Rule != nil:
		return j.Rule.Recurrence()
	}

	return nil, fmt.Errorf("%w: job %q has no schedule", ErrInvalidJob, j.Name)
}

// Recurrence переводит правило в recurrence.Rule, загружая часовой пояс.
func (r Rule) Recurrence() (recurrence.Rule, error) {
	rule := recurrence.Rule{
		Second:     r.Second,
		Minute:     r.Minute,
		Hour:       r.Hour,
		DayOfMonth: r.DayOfMonth,
		Month:      r.Month,
		DayOfWeek:  r.DayOfWeek,
		Once:       r.Once,
	}

	if r.Timezone != "" {
		loc, err := time.LoadLocation(r.Timezone)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("%w: timezone %q: %v", ErrInvalidJob, r.Timezone, err)
		}
		rule.Location = loc
	}

	if r.Start != "" {
		start, err := time.Parse(time.RFC3339, r.Start)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("%w: start: %v", ErrInvalidJob, err)
		}
		rule.Start = start
	}

	if err := rule.Validate(); err != nil {
		return recurrence.Rule{}, err
	}
	return rule, nil
}
