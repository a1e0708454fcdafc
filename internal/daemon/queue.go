// Package daemon runs the window manager core on a single goroutine and
// keeps outside state (root window properties, the live window set) in step
// with it.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrStopped is returned by Do once the queue has stopped running.
var ErrStopped = errors.New("event queue stopped")

// DefaultQueueSize is the buffer depth of a queue built with NewQueue.
const DefaultQueueSize = 256

type job struct {
	fn   func() error
	done chan error
}

// Queue serializes work onto the goroutine running Run. Every access to the
// window manager core goes through it.
type Queue struct {
	jobs    chan job
	stopped chan struct{}
	logger  *slog.Logger
}

// NewQueue returns a queue with room for size pending jobs.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		jobs:    make(chan job, size),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

// Run drains the queue until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) {
	defer close(q.stopped)
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-q.jobs:
			err := q.run(j.fn)
			if j.done != nil {
				j.done <- err
			} else if err != nil {
				q.logger.Warn("queued job failed", "error", err)
			}
		}
	}
}

func (q *Queue) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			q.logger.Error("queued job panic recovered", "error", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

// Post schedules fn without waiting for it. Errors are logged.
func (q *Queue) Post(fn func() error) {
	select {
	case q.jobs <- job{fn: fn}:
	case <-q.stopped:
	}
}

// Do runs fn on the queue goroutine and returns its error.
func (q *Queue) Do(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	select {
	case q.jobs <- job{fn: fn, done: done}:
	case <-q.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-done:
		return err
	case <-q.stopped:
		// The job may have run just before the loop exited.
		select {
		case err := <-done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}
