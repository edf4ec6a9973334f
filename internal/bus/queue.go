package bus

import (
	"context"
	"errors"
	"sync/atomic"
)

var ErrQueueClosed = errors.New("bus: queue closed")

// Queue is a bounded FIFO consumed by a single Run loop.
type Queue[T any] struct {
	ch     chan T
	done   chan struct{}
	closed atomic.Bool
}

// NewQueue allocates a queue with the given capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue[T]{
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Publish enqueues v, waiting for room until ctx is done or the queue closes.
func (q *Queue[T]) Publish(ctx context.Context, v T) error {
	if q.closed.Load() {
		return ErrQueueClosed
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	case q.ch <- v:
		return nil
	}
}

// Close stops the queue from accepting new items. Items already queued are
// still handed to Run.
func (q *Queue[T]) Close() {
	if q.closed.CompareAndSwap(false, true) {
		close(q.done)
	}
}

// Run consumes items until ctx is done, or until the queue is closed and
// drained.
func (q *Queue[T]) Run(ctx context.Context, handler func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case v := <-q.ch:
			handler(v)
		case <-q.done:
			for {
				select {
				case v := <-q.ch:
					handler(v)
				default:
					return
				}
			}
		}
	}
}
