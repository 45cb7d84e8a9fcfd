package rediskv

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/syncron/internal/lock"
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит токену.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// Locker — lock.Locker в Redis.
type Locker struct {
	client redis.Cmdable
	opts   options
}

// NewLocker создаёт Locker.
func NewLocker(client redis.Cmdable, opts ...Option) *Locker {
	o := defaultOptions()
	o.token = uuid.NewString
	for _, opt := range opts {
		opt(&o)
	}
	return &Locker{client: client, opts: o}
}

// Lock повторяет SET NX PX, пока лок не получен или ctx не отменён.
func (l *Locker) Lock(ctx context.Context, name string) (lock.Lock, error) {
	if name == "" {
		return nil, lock.ErrEmptyName
	}

	key := l.opts.lockKey(name)
	token := l.opts.token()

	ticker := time.NewTicker(l.opts.pollInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx %q: %w", key, err)
		}
		if ok {
			return &redisLock{client: l.client, key: key, token: token}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

type redisLock struct {
	once   sync.Once
	client redis.Cmdable
	key    string
	token  string
}

// Unlock удаляет ключ лока, если он ещё наш. Если TTL уже истёк
// и лок забрал другой инстанс, ключ не трогается.
func (l *redisLock) Unlock(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		err = l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
		if err != nil {
			err = fmt.Errorf("redis release %q: %w", l.key, err)
		}
	})
	return err
}

var _ lock.Locker = (*Locker)(nil)
