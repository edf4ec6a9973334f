package correlator

import (
	"errors"
	"testing"

	"exchangeclient/internal/obs"
	"exchangeclient/internal/protocol"
	"exchangeclient/pkg/exception"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAssignsIncreasingIDs(t *testing.T) {
	c := New("test", nil)

	var ids []uint64
	for i := 0; i < 3; i++ {
		_, err := c.Send(func(id uint64) error {
			ids = append(ids, id)
			return nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, []uint64{1, 2, 3}, ids)
	assert.Equal(t, 3, c.Pending())
}

func TestSendTransmitFailureDropsWaiter(t *testing.T) {
	c := New("test", nil)
	boom := errors.New("boom")

	ch, err := c.Send(func(uint64) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.Nil(t, ch)
	assert.Zero(t, c.Pending())

	_, err = c.Send(func(id uint64) error {
		assert.Equal(t, uint64(2), id, "ids are never reused")
		return nil
	})
	require.NoError(t, err)
}

func TestResolveWakesExactlyOneWaiter(t *testing.T) {
	c := New("test", nil)

	var firstID uint64
	first, err := c.Send(func(id uint64) error { firstID = id; return nil })
	require.NoError(t, err)
	second, err := c.Send(func(uint64) error { return nil })
	require.NoError(t, err)

	reply := protocol.InsertOrderReply{OrderID: 9}
	assert.True(t, c.Resolve(firstID, Reply{Message: reply}))
	assert.False(t, c.Resolve(firstID, Reply{Message: reply}), "second resolve of the same id is unknown")
	assert.False(t, c.Resolve(999, Reply{}))

	got := <-first
	assert.Equal(t, reply, got.Message)
	assert.NoError(t, got.Err)

	select {
	case <-second:
		t.Fatal("second waiter must still be parked")
	default:
	}
	assert.Equal(t, 1, c.Pending())
}

func TestFailAllResolvesEveryWaiterOnce(t *testing.T) {
	c := New("test", nil)

	const n = 5
	chans := make([]<-chan Reply, 0, n)
	for i := 0; i < n; i++ {
		ch, err := c.Send(func(uint64) error { return nil })
		require.NoError(t, err)
		chans = append(chans, ch)
	}

	assert.Equal(t, n, c.FailAll(exception.ErrConnectionLost))
	assert.Zero(t, c.FailAll(exception.ErrConnectionLost))
	assert.Zero(t, c.Pending())

	for _, ch := range chans {
		r := <-ch
		require.ErrorIs(t, r.Err, exception.ErrConnectionLost)
		select {
		case <-ch:
			t.Fatal("waiter resolved twice")
		default:
		}
	}
}

func pendingGauge(t *testing.T, reg *prometheus.Registry, conn string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != "exchange_client_pending_requests" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "conn" && l.GetValue() == conn {
					return m.GetGauge().GetValue()
				}
			}
		}
	}
	t.Fatalf("no pending gauge for %s", conn)
	return 0
}

func TestPendingGaugeIsPerCorrelator(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := obs.NewMetrics(reg)
	info := New("info", metrics)
	exec := New("exec", metrics)

	_, err := info.Send(func(uint64) error { return nil })
	require.NoError(t, err)
	for range 3 {
		_, err := exec.Send(func(uint64) error { return nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 1.0, pendingGauge(t, reg, "info"))
	assert.Equal(t, 3.0, pendingGauge(t, reg, "exec"))

	exec.FailAll(exception.ErrConnectionLost)
	assert.Equal(t, 1.0, pendingGauge(t, reg, "info"))
	assert.Equal(t, 0.0, pendingGauge(t, reg, "exec"))

	require.True(t, info.Resolve(1, Reply{Message: protocol.SubscribeReply{}}))
	assert.Equal(t, 0.0, pendingGauge(t, reg, "info"))
}
