package journal

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"exchangeclient/internal/obs"
	"exchangeclient/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

var (
	ErrQueueFull      = stderrors.New("journal: queue full")
	ErrNotStarted     = stderrors.New("journal: writer not started")
	ErrAlreadyStarted = stderrors.New("journal: writer already started")
)

// Writer batches entries from a buffered queue into a Store.
type Writer struct {
	cfg     Config
	store   Store
	metrics *obs.Metrics
	ch      chan Entry
	wg      sync.WaitGroup

	errMu sync.Mutex
	err   error

	started atomic.Bool
	closed  atomic.Bool
	closeMu sync.RWMutex
}

func NewWriter(store Store, cfg Config, metrics *obs.Metrics) (*Writer, error) {
	if store == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "journal: nil store")
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Writer{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		ch:      make(chan Entry, cfg.QueueSize),
	}, nil
}

// Start runs the writer loop in a new goroutine.
func (w *Writer) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
	return nil
}

// Close stops accepting entries, flushes what is queued and returns the first
// save error seen.
func (w *Writer) Close() error {
	w.closeMu.Lock()
	if w.closed.CompareAndSwap(false, true) {
		close(w.ch)
	}
	w.closeMu.Unlock()
	w.wg.Wait()
	return w.Err()
}

func (w *Writer) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *Writer) setErr(err error) {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

// TryAppend enqueues an entry without blocking.
func (w *Writer) TryAppend(e Entry) error {
	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed.Load() {
		return exception.ErrClosed
	}
	if !w.started.Load() {
		return ErrNotStarted
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	select {
	case w.ch <- e:
		return nil
	default:
		w.metrics.IncJournalDrop()
		return ErrQueueFull
	}
}

// Record is TryAppend for callers that cannot act on a failure.
func (w *Writer) Record(e Entry) {
	if err := w.TryAppend(e); err != nil {
		logs.Warnf("journal: drop %s on %s, err: %+v", e.Kind, e.InstrumentID, err)
	}
}

func (w *Writer) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]Entry, 0, w.cfg.BatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		w.save(batch)
		batch = make([]Entry, 0, w.cfg.BatchSize)
	}

	for {
		select {
		case <-ctx.Done():
			batch = w.drain(batch)
			flush()
			return
		case e, ok := <-w.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, e)
			if len(batch) >= w.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (w *Writer) drain(batch []Entry) []Entry {
	for {
		select {
		case e, ok := <-w.ch:
			if !ok {
				return batch
			}
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (w *Writer) save(batch []Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.SaveTimeout)
	defer cancel()
	if err := w.store.Save(ctx, batch); err != nil {
		logs.Errorf("journal: save %d entries, err: %+v", len(batch), err)
		w.setErr(err)
	}
}
