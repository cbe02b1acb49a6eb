// Package countdown drives the expiry display of a check-in token. It is presentation
// only: whether a token is still valid is decided when a terminal redeems it.
package countdown

import (
	"context"
	"sync"
	"time"
)

// Remaining returns the whole seconds left until expiresAt, clamped at zero.
func Remaining(expiresAt, now time.Time) int {
	d := expiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}

type Option func(*Timer)

// WithInterval overrides the one second tick.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Timer) {
		if now != nil {
			t.now = now
		}
	}
}

// Timer reports the remaining seconds on every tick and calls onExpire once when
// they reach zero.
type Timer struct {
	expiresAt time.Time
	interval  time.Duration
	now       func() time.Time
	onTick    func(remaining int)
	onExpire  func()

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	expired bool
}

// Start runs the countdown in its own goroutine until it expires, Stop is called or
// ctx is cancelled. The first tick is delivered immediately.
func Start(ctx context.Context, expiresAt time.Time, onTick func(remaining int), onExpire func(), opts ...Option) *Timer {
	t := &Timer{
		expiresAt: expiresAt,
		interval:  time.Second,
		now:       time.Now,
		onTick:    onTick,
		onExpire:  onExpire,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	go t.run(ctx)
	return t
}

func (t *Timer) run(ctx context.Context) {
	defer close(t.done)

	if t.tick() {
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			if t.tick() {
				return
			}
		}
	}
}

// tick reports the remaining time and returns true once the timer has expired.
func (t *Timer) tick() bool {
	remaining := Remaining(t.expiresAt, t.now())
	if t.onTick != nil {
		t.onTick(remaining)
	}
	if remaining > 0 {
		return false
	}

	t.mu.Lock()
	already := t.expired
	t.expired = true
	t.mu.Unlock()

	if !already && t.onExpire != nil {
		t.onExpire()
	}
	return true
}

// Stop cancels the countdown. Safe to call more than once and after expiry.
func (t *Timer) Stop() {
	t.stopOnce.Do(func() { close(t.stop) })
}

// Done is closed when the countdown goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}

// Expired reports whether the expiry callback has fired.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}
