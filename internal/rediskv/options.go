package rediskv

import "time"

// DefaultPrefix — префикс ключей по умолчанию.
const DefaultPrefix = "syncron:"

// Значения по умолчанию для Locker.
const (
	DefaultLockTTL      = 30 * time.Second
	DefaultPollInterval = 50 * time.Millisecond
)

type options struct {
	prefix       string
	lockTTL      time.Duration
	pollInterval time.Duration
	token        func() string
}

func defaultOptions() options {
	return options{
		prefix:       DefaultPrefix,
		lockTTL:      DefaultLockTTL,
		pollInterval: DefaultPollInterval,
	}
}

// Option настраивает WatermarkStore или Locker.
type Option func(*options)

// WithPrefix задаёт префикс ключей.
func WithPrefix(p string) Option {
	return func(o *options) { o.prefix = p }
}

// WithLockTTL задаёт TTL лока. Критическая секция guard'а — это
// одно чтение и одна запись watermark'а, так что TTL с запасом
// перекрывает её даже при медленном хранилище.
func WithLockTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lockTTL = d
		}
	}
}

// WithPollInterval задаёт интервал повторных попыток SET NX.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.pollInterval = d
		}
	}
}

func (o options) watermarkKey(job string) string { return o.prefix + "wm:" + job }

func (o options) lockKey(name string) string { return o.prefix + "lock:" + name }
