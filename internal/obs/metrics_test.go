package obs

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IncInbound("exec.trade")
	m.IncOutbound("exec.insert_order")
	m.ObserveRequest(time.Millisecond)
	m.SetPending("exec", 3)
	m.IncDisconnect("remote")
	m.IncFatal("forced_disconnect")
	m.IncJournalDrop()

	assert.Nil(t, NewMetrics(nil))
}

func TestMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	require.NotNil(t, m)

	m.IncInbound("exec.trade")
	m.IncInbound("exec.trade")
	m.IncOutbound("exec.insert_order")
	m.SetPending("exec", 2)
	m.SetPending("info", 1)
	m.IncFatal("protocol")
	m.ObserveRequest(2 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.inbound.WithLabelValues("exec.trade")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outbound.WithLabelValues("exec.insert_order")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pending.WithLabelValues("exec")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.pending.WithLabelValues("info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fatals.WithLabelValues("protocol")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.latency))
}
