package bridge

import (
	"context"
	"sync"
	"testing"
	"time"

	"exchangeclient/internal/correlator"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStarted(t *testing.T) *Bridge {
	t.Helper()
	b := New(16)
	b.Start()
	t.Cleanup(b.Stop)
	return b
}

func TestCallSerializesOnLoop(t *testing.T) {
	b := newStarted(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Call(context.Background(), b, func() int {
				counter++
				return counter
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := Call(context.Background(), b, func() int { return counter })
	require.NoError(t, err)
	assert.Equal(t, 50, got)
}

func TestPostKeepsOrder(t *testing.T) {
	b := newStarted(t)

	var seen []int
	for i := 0; i < 10; i++ {
		require.NoError(t, b.Post(func() { seen = append(seen, i) }))
	}
	got, err := Call(context.Background(), b, func() []int { return append([]int(nil), seen...) })
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestRunBlockingResolvedByCorrelator(t *testing.T) {
	b := newStarted(t)
	c := correlator.New("test", nil)

	var sentID uint64
	result := make(chan error, 1)
	go func() {
		msg, err := b.RunBlocking(context.Background(), func() (<-chan correlator.Reply, error) {
			return c.Send(func(id uint64) error { sentID = id; return nil })
		})
		if err == nil {
			assert.Equal(t, protocol.InsertOrderReply{OrderID: 5}, msg)
		}
		result <- err
	}()

	require.Eventually(t, func() bool {
		n, _ := Call(context.Background(), b, c.Pending)
		return n == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Do(context.Background(), func() {
		c.Resolve(sentID, correlator.Reply{Message: protocol.InsertOrderReply{OrderID: 5}})
	}))
	require.NoError(t, <-result)
}

func TestRunBlockingFailedByDisconnect(t *testing.T) {
	b := newStarted(t)
	c := correlator.New("test", nil)

	const n = 4
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := b.RunBlocking(context.Background(), func() (<-chan correlator.Reply, error) {
				return c.Send(func(uint64) error { return nil })
			})
			errs <- err
		}()
	}

	require.Eventually(t, func() bool {
		p, _ := Call(context.Background(), b, c.Pending)
		return p == n
	}, time.Second, 5*time.Millisecond)

	failed, err := Call(context.Background(), b, func() int { return c.FailAll(exception.ErrConnectionLost) })
	require.NoError(t, err)
	assert.Equal(t, n, failed)
	for i := 0; i < n; i++ {
		require.ErrorIs(t, <-errs, exception.ErrConnectionLost)
	}
}

func TestRunBlockingContextCancel(t *testing.T) {
	b := newStarted(t)
	c := correlator.New("test", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := b.RunBlocking(ctx, func() (<-chan correlator.Reply, error) {
		return c.Send(func(uint64) error { return nil })
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStoppedBridgeRejects(t *testing.T) {
	b := New(4)
	b.Start()
	b.Stop()
	b.Stop()

	require.ErrorIs(t, b.Post(func() {}), exception.ErrClosed)
	_, err := Call(context.Background(), b, func() int { return 1 })
	require.ErrorIs(t, err, exception.ErrClosed)
}

func TestTaskPanicIsReportedAndLoopSurvives(t *testing.T) {
	b := newStarted(t)
	require.ErrorIs(t, b.Do(context.Background(), func() { panic("boom") }), ErrTaskPanicked)

	_, err := Call(context.Background(), b, func() int { panic("boom") })
	require.ErrorIs(t, err, ErrTaskPanicked)

	got, err := Call(context.Background(), b, func() int { return 7 })
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestPostedTaskPanicReachesHandler(t *testing.T) {
	b := New(16)
	reported := make(chan error, 1)
	b.SetPanicHandler(func(err error) { reported <- err })
	b.Start()
	t.Cleanup(b.Stop)

	require.NoError(t, b.Post(func() { panic("dispatch") }))
	select {
	case err := <-reported:
		require.ErrorIs(t, err, ErrTaskPanicked)
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}

	require.NoError(t, b.Do(context.Background(), func() {}))
}
