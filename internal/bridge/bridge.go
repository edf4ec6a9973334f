package bridge

import (
	"context"
	stderrors "errors"
	"sync"

	"exchangeclient/internal/bus"
	"exchangeclient/internal/correlator"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const defaultQueueSize = 1024

var ErrTaskPanicked = stderrors.New("bridge: task panicked")

// Bridge runs every submitted task on one goroutine. State touched only from
// tasks needs no further locking.
type Bridge struct {
	queue *bus.Queue[func()]

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
	onPanic   func(error)
}

func New(queueSize int) *Bridge {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Bridge{
		queue: bus.NewQueue[func()](queueSize),
		done:  make(chan struct{}),
	}
}

// Start launches the loop goroutine. Later calls are no-ops.
func (b *Bridge) Start() {
	b.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		go func() {
			defer close(b.done)
			b.queue.Run(ctx, b.run)
		}()
	})
}

// SetPanicHandler installs fn to run on the loop when a posted task panics.
// It must be called before Start.
func (b *Bridge) SetPanicHandler(fn func(error)) {
	b.onPanic = fn
}

func (b *Bridge) run(task func()) {
	err := protect(task)
	if err == nil {
		return
	}
	logs.Errorf("bridge: posted task failed, err: %+v", err)
	if b.onPanic != nil {
		b.onPanic(err)
	}
}

func protect(task func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrTaskPanicked, "recovered: %v", r)
		}
	}()
	task()
	return nil
}

// Stop closes the queue, lets queued tasks finish and waits for the loop to
// exit. It must not be called from a task.
func (b *Bridge) Stop() {
	b.stopOnce.Do(func() {
		b.queue.Close()
		b.startOnce.Do(func() { close(b.done) })
		<-b.done
		if b.cancel != nil {
			b.cancel()
		}
	})
}

// Post queues task behind everything submitted before it, blocking while the
// queue is full. Tasks must not call Post.
func (b *Bridge) Post(task func()) error {
	if err := b.queue.Publish(context.Background(), task); err != nil {
		return errors.Wrap(exception.ErrClosed, "bridge: post")
	}
	return nil
}

// Do runs task on the loop and waits for it to finish. When ctx ends first the
// task may still run later. A panic in task is returned as ErrTaskPanicked.
func (b *Bridge) Do(ctx context.Context, task func()) error {
	finished := make(chan struct{})
	var taskErr error
	err := b.queue.Publish(ctx, func() {
		defer close(finished)
		if taskErr = protect(task); taskErr != nil {
			logs.Errorf("bridge: task failed, err: %+v", taskErr)
		}
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(exception.ErrClosed, "bridge: do")
	}

	select {
	case <-finished:
		return taskErr
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		select {
		case <-finished:
			return taskErr
		default:
			return errors.Wrap(exception.ErrClosed, "bridge: loop exited")
		}
	}
}

// Call runs fn on the loop and returns its result.
func Call[T any](ctx context.Context, b *Bridge, fn func() T) (T, error) {
	var out T
	err := b.Do(ctx, func() { out = fn() })
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// CallErr is Call for functions that also fail.
func CallErr[T any](ctx context.Context, b *Bridge, fn func() (T, error)) (T, error) {
	var (
		out   T
		fnErr error
	)
	if err := b.Do(ctx, func() { out, fnErr = fn() }); err != nil {
		var zero T
		return zero, err
	}
	return out, fnErr
}

// RunBlocking submits a request-producing operation to the loop and waits,
// outside the loop, for the reply the operation registered. The caller is
// released by the reply, by the connection failure that fails every waiter, or
// by ctx.
func (b *Bridge) RunBlocking(ctx context.Context, op func() (<-chan correlator.Reply, error)) (protocol.Message, error) {
	var (
		ch    <-chan correlator.Reply
		opErr error
	)
	if err := b.Do(ctx, func() { ch, opErr = op() }); err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}

	select {
	case r := <-ch:
		return r.Message, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
