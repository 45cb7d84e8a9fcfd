package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLocker_MutualExclusion(t *testing.T) {
	l := NewMemoryLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(context.Background(), l, "digestLock", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("expected at most 1 holder, got %d", maxInside)
	}
}

func TestMemoryLocker_DifferentNamesIndependent(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	a, err := l.Lock(ctx, "aLock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Unlock(ctx)

	ctx2, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	b, err := l.Lock(ctx2, "bLock")
	if err != nil {
		t.Fatalf("different name should not block: %v", err)
	}
	b.Unlock(ctx)
}

func TestMemoryLocker_ContextCancel(t *testing.T) {
	l := NewMemoryLocker()
	ctx := context.Background()

	held, err := l.Lock(ctx, "jobLock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer held.Unlock(ctx)

	waitCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(waitCtx, "jobLock")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}

func TestMemoryLocker_EmptyName(t *testing.T) {
	_, err := NewMemoryLocker().Lock(context.Background(), "")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
}

func TestWithLock_ReleasesOnError(t *testing.T) {
	l := NewMemoryLocker()
	boom := errors.New("store down")

	err := WithLock(context.Background(), l, "jobLock", func(ctx context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected fn error, got %v", err)
	}
	if l.Held("jobLock") {
		t.Error("lock should be released after fn error")
	}
}

func TestWithLock_ReleasesOnPanic(t *testing.T) {
	l := NewMemoryLocker()

	func() {
		defer func() { _ = recover() }()
		_ = WithLock(context.Background(), l, "jobLock", func(ctx context.Context) error {
			panic("boom")
		})
	}()

	if l.Held("jobLock") {
		t.Error("lock should be released after panic")
	}
}

func TestWithLock_AcquireError(t *testing.T) {
	down := errors.New("connection refused")
	l := LockerFunc(func(ctx context.Context, name string) (Lock, error) {
		return nil, down
	})

	called := false
	err := WithLock(context.Background(), l, "jobLock", func(ctx context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Error("fn should not be called when lock is not acquired")
	}
	if !IsAcquireError(err) || !errors.Is(err, down) {
		t.Errorf("expected acquire error wrapping cause, got %v", err)
	}
}

type failingLock struct{ err error }

func (f failingLock) Unlock(context.Context) error { return f.err }

func TestWithLock_UnlockError(t *testing.T) {
	unlockErr := errors.New("unlock failed")
	l := LockerFunc(func(ctx context.Context, name string) (Lock, error) {
		return failingLock{err: unlockErr}, nil
	})

	err := WithLock(context.Background(), l, "jobLock", func(ctx context.Context) error { return nil })
	if !errors.Is(err, ErrUnlock) || !errors.Is(err, unlockErr) {
		t.Errorf("expected ErrUnlock wrapping cause, got %v", err)
	}
}

type ctxKey struct{}

type bindingLock struct{ value string }

func (bindingLock) Unlock(context.Context) error { return nil }

func (b bindingLock) Bind(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, b.value)
}

func TestWithLock_BindsContext(t *testing.T) {
	l := LockerFunc(func(ctx context.Context, name string) (Lock, error) {
		return bindingLock{value: "held-conn"}, nil
	})

	var got any
	err := WithLock(context.Background(), l, "jobLock", func(ctx context.Context) error {
		got = ctx.Value(ctxKey{})
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "held-conn" {
		t.Errorf("expected bound value in critical section, got %v", got)
	}
}
