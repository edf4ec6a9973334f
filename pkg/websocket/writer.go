package websocket

import (
	"sync/atomic"

	"exchangeclient/pkg/exception"
)

// writer provides a bounded outbound queue for one connection.
type writer struct {
	queue  chan []byte
	closed atomic.Bool
}

func newWriter(capacity int) *writer {
	if capacity <= 0 {
		capacity = 1
	}
	return &writer{queue: make(chan []byte, capacity)}
}

// Send enqueues a copy of payload without blocking.
func (w *writer) Send(payload []byte) error {
	if w.closed.Load() {
		return exception.ErrNotConnected
	}
	buf := append([]byte(nil), payload...)
	select {
	case w.queue <- buf:
		return nil
	default:
		return exception.ErrQueueFull
	}
}

// Drain drops every queued frame. The writer refuses new frames afterwards.
func (w *writer) Drain() int {
	w.closed.Store(true)
	n := 0
	for {
		select {
		case <-w.queue:
			n++
		default:
			return n
		}
	}
}
