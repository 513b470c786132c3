// Package eventloop implements the single-threaded task loop that request
// objects post their progress to.
//
// Work running on other goroutines never touches loop-owned state directly.
// It obtains an enqueue function with RegisterCallback and hands the loop a
// callback to run. The loop keeps running until its queue is empty and no
// registered callback is outstanding.
package eventloop

import (
	"context"
	"sync"
)

// EventLoop runs queued callbacks one at a time on the goroutine that
// called Start.
type EventLoop struct {
	lock                sync.Mutex
	queue               []func() error
	wakeupCh            chan struct{}
	registeredCallbacks int
}

func New() *EventLoop {
	return &EventLoop{
		wakeupCh: make(chan struct{}, 1),
	}
}

func (e *EventLoop) wakeup() {
	select {
	case e.wakeupCh <- struct{}{}:
	default:
	}
}

// RegisterCallback signals that a callback will be queued later and keeps
// the loop alive until it is. The returned function must be called exactly
// once; it is safe to call from any goroutine.
func (e *EventLoop) RegisterCallback() func(func() error) {
	e.lock.Lock()
	var called bool
	e.registeredCallbacks++
	e.lock.Unlock()

	return func(f func() error) {
		e.lock.Lock()
		defer e.lock.Unlock()
		if called {
			panic("eventloop: RegisterCallback enqueue function called twice")
		}
		called = true
		e.queue = append(e.queue, f)
		e.registeredCallbacks--
		e.wakeup()
	}
}

// Post runs f on a later turn of the loop. Tasks posted while a batch is
// running are never run as part of that batch.
func (e *EventLoop) Post(f func()) {
	e.RegisterCallback()(func() error {
		f()
		return nil
	})
}

func (e *EventLoop) popAll() (queue []func() error, awaiting bool) {
	e.lock.Lock()
	defer e.lock.Unlock()
	queue = e.queue
	e.queue = make([]func() error, 0, len(queue))
	awaiting = e.registeredCallbacks != 0
	return queue, awaiting
}

// Start runs firstCallback and then every queued callback until nothing is
// queued or registered. It returns the first error a callback returns, or
// the context error if ctx ends while waiting.
func (e *EventLoop) Start(ctx context.Context, firstCallback func() error) error {
	e.lock.Lock()
	e.queue = append([]func() error{firstCallback}, e.queue...)
	e.lock.Unlock()

	for {
		queue, awaiting := e.popAll()

		if len(queue) == 0 {
			if !awaiting {
				return nil
			}
			select {
			case <-e.wakeupCh:
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, f := range queue {
			if err := f(); err != nil {
				return err
			}
		}
	}
}

// Pending reports the number of queued and outstanding callbacks.
func (e *EventLoop) Pending() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return len(e.queue) + e.registeredCallbacks
}
