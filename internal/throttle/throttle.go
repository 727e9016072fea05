// Package throttle rate-limits a stream of values to at most one emission per interval,
// delivering the most recent value at the end of each interval (trailing edge).
package throttle

import (
	"context"
	"sync"
	"time"
)

// Throttle delivers pushed values to fn, at most once per interval.
type Throttle[T any] struct {
	interval time.Duration
	fn       func(T)

	mu      sync.Mutex
	pending bool
	latest  T
	timer   *time.Timer
	stopped bool
}

// New returns a Throttle calling fn with the last value pushed during each interval.
func New[T any](interval time.Duration, fn func(T)) *Throttle[T] {
	return &Throttle[T]{interval: interval, fn: fn}
}

// Push records v. The first push of a quiet period arms a timer; when it fires fn
// receives the latest value pushed so far.
func (t *Throttle[T]) Push(v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.latest = v
	if t.pending {
		return
	}
	t.pending = true
	t.timer = time.AfterFunc(t.interval, t.fire)
}

// Stop detaches the throttle. A pending emission is dropped and later pushes are ignored.
func (t *Throttle[T]) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	t.pending = false
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *Throttle[T]) fire() {
	t.mu.Lock()
	if t.stopped || !t.pending {
		t.mu.Unlock()
		return
	}
	t.pending = false
	v := t.latest
	t.mu.Unlock()

	t.fn(v)
}

// Listen throttles values from src into fn until ctx ends or src closes. The returned
// release func stops listening and waits for the listener to exit.
func Listen[T any](ctx context.Context, src <-chan T, interval time.Duration, fn func(T)) (release func()) {
	ctx, cancel := context.WithCancel(ctx)
	th := New(interval, fn)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer th.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-src:
				if !ok {
					return
				}
				th.Push(v)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
