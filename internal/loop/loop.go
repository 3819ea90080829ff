// Package loop runs every bridge operation of one view on a single goroutine.
//
// Host callbacks arrive on arbitrary goroutines (WebSocket readers, CDP event
// pumps); they are posted here and executed in FIFO order, so the bridge
// state itself needs no locking.
package loop

import (
	"context"
	"errors"
	"sync"

	"github.com/npillmayer/schuko/tracing"
)

// ErrClosed is returned by Call once the loop has been closed.
var ErrClosed = errors.New("loop closed")

func tracer() tracing.Trace {
	return tracing.Select("mdview.loop")
}

// Loop is a cooperative single-goroutine task queue. The queue is unbounded
// so that tasks running on the loop can post follow-up work without blocking.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// New starts a loop.
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post schedules fn. It reports false, without running fn, once the loop is
// closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call runs fn on the loop and waits for it to finish. It must not be called
// from a task running on the same loop.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrClosed
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrClosed
		}
	}
}

// Close stops the loop. Queued tasks that have not started are dropped.
func (l *Loop) Close() {
	l.once.Do(func() {
		l.mu.Lock()
		l.closed = true
		l.pending = nil
		l.mu.Unlock()
		close(l.stop)
	})
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case <-l.wake:
		case <-l.stop:
			return
		}

		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.exec(fn)
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.pending) == 0 {
		return nil, false
	}
	fn := l.pending[0]
	l.pending[0] = nil
	l.pending = l.pending[1:]
	return fn, true
}

// exec keeps a panicking task from taking the loop down with it.
func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("task panicked: %v", r)
		}
	}()
	fn()
}
