package rediskv

import (
	"testing"
	"time"
)

func TestOptions_Keys(t *testing.T) {
	o := defaultOptions()
	WithPrefix("app:")(&o)

	if got := o.watermarkKey("digest"); got != "app:wm:digest" {
		t.Errorf("expected app:wm:digest, got %s", got)
	}
	if got := o.lockKey("digestLock"); got != "app:lock:digestLock" {
		t.Errorf("expected app:lock:digestLock, got %s", got)
	}
}

func TestOptions_IgnoreNonPositiveDurations(t *testing.T) {
	o := defaultOptions()
	WithLockTTL(0)(&o)
	WithPollInterval(-time.Second)(&o)

	if o.lockTTL != DefaultLockTTL {
		t.Errorf("expected default TTL, got %v", o.lockTTL)
	}
	if o.pollInterval != DefaultPollInterval {
		t.Errorf("expected default poll interval, got %v", o.pollInterval)
	}

	WithLockTTL(5 * time.Second)(&o)
	if o.lockTTL != 5*time.Second {
		t.Errorf("expected 5s TTL, got %v", o.lockTTL)
	}
}

func TestNewLocker_TokensUnique(t *testing.T) {
	l := NewLocker(nil)
	a, b := l.opts.token(), l.opts.token()
	if a == "" || a == b {
		t.Errorf("expected unique non-empty tokens, got %q and %q", a, b)
	}
}
