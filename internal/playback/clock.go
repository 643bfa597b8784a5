package playback

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Timer is a cancellable one-shot timer.
type Timer interface {
	// Stop prevents the timer from firing. It returns false if the timer
	// already fired or was stopped.
	Stop() bool
}

// Clock is the time source the scheduler runs on.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a Clock backed by the time package. Callbacks run on
// timer goroutines; wrap it in a Loop to serialize them.
func SystemClock() Clock { return systemClock{} }

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ErrLoopClosed is returned by Next once the loop has been closed.
var ErrLoopClosed = errors.New("playback loop closed")

// Loop is a Clock whose callbacks are queued instead of run. The owner drains
// the queue with Next on its own goroutine, so every callback runs on that
// goroutine.
type Loop struct {
	base  Clock
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop wraps base. buffer sizes the callback queue.
func NewLoop(base Clock, buffer int) *Loop {
	if buffer < 1 {
		buffer = 1
	}
	return &Loop{
		base:  base,
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Now returns the base clock's time.
func (l *Loop) Now() time.Time { return l.base.Now() }

// AfterFunc schedules f to be queued after d.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	return l.base.AfterFunc(d, func() {
		select {
		case l.queue <- f:
		case <-l.done:
		}
	})
}

// Next blocks until a callback is due, the loop is closed, or ctx is done.
func (l *Loop) Next(ctx context.Context) (func(), error) {
	select {
	case f := <-l.queue:
		return f, nil
	case <-l.done:
		return nil, ErrLoopClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// TryNext returns a queued callback without blocking.
func (l *Loop) TryNext() (func(), bool) {
	select {
	case f := <-l.queue:
		return f, true
	default:
		return nil, false
	}
}

// Close releases goroutines blocked on the loop. Queued callbacks are dropped.
func (l *Loop) Close() {
	l.once.Do(func() { close(l.done) })
}
