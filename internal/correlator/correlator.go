package correlator

import (
	"time"

	"exchangeclient/internal/obs"
	"exchangeclient/internal/protocol"

	"github.com/yanun0323/logs"
)

// Reply is the outcome delivered to a waiter. Exactly one of Message and Err
// is set.
type Reply struct {
	Message protocol.Message
	Err     error
}

type waiter struct {
	ch     chan Reply
	sentAt time.Time
}

// Correlator pairs requests with replies by id. It is not safe for concurrent
// use; the owning event loop serializes every call.
type Correlator struct {
	name    string
	next    uint64
	waiters map[uint64]waiter
	metrics *obs.Metrics
}

func New(name string, metrics *obs.Metrics) *Correlator {
	return &Correlator{
		name:    name,
		waiters: make(map[uint64]waiter),
		metrics: metrics,
	}
}

// Send assigns the next id, parks a waiter for it and calls transmit with the
// id. When transmit fails the waiter is discarded and the error returned. Ids
// keep increasing across reconnects.
func (c *Correlator) Send(transmit func(id uint64) error) (<-chan Reply, error) {
	c.next++
	id := c.next
	w := waiter{ch: make(chan Reply, 1), sentAt: time.Now()}
	c.waiters[id] = w

	if err := transmit(id); err != nil {
		delete(c.waiters, id)
		return nil, err
	}
	c.metrics.SetPending(c.name, len(c.waiters))
	return w.ch, nil
}

// Resolve wakes the waiter for id. An unknown id is logged and ignored.
func (c *Correlator) Resolve(id uint64, r Reply) bool {
	w, ok := c.waiters[id]
	if !ok {
		logs.Warnf("%s: reply for unknown request id %d", c.name, id)
		return false
	}
	delete(c.waiters, id)
	c.metrics.ObserveRequest(time.Since(w.sentAt))
	c.metrics.SetPending(c.name, len(c.waiters))
	w.ch <- r
	return true
}

// FailAll wakes every outstanding waiter with err and returns how many there
// were.
func (c *Correlator) FailAll(err error) int {
	n := len(c.waiters)
	for id, w := range c.waiters {
		delete(c.waiters, id)
		w.ch <- Reply{Err: err}
	}
	c.metrics.SetPending(c.name, 0)
	return n
}

func (c *Correlator) Pending() int {
	return len(c.waiters)
}
