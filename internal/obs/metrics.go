package obs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects client counters and request latency. A nil *Metrics is a
// valid no-op collector.
type Metrics struct {
	inbound     *prometheus.CounterVec
	outbound    *prometheus.CounterVec
	latency     prometheus.Histogram
	pending     *prometheus.GaugeVec
	disconnects *prometheus.CounterVec
	fatals      *prometheus.CounterVec
	journalDrop prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	f := promauto.With(reg)
	return &Metrics{
		inbound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange_client",
			Name:      "inbound_messages_total",
			Help:      "Inbound frames by message kind.",
		}, []string{"kind"}),
		outbound: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange_client",
			Name:      "outbound_requests_total",
			Help:      "Outbound requests by message kind.",
		}, []string{"kind"}),
		latency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "exchange_client",
			Name:      "request_duration_seconds",
			Help:      "Time between sending a request and resolving its reply.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		pending: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "exchange_client",
			Name:      "pending_requests",
			Help:      "Requests waiting for a reply, by connection.",
		}, []string{"conn"}),
		disconnects: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange_client",
			Name:      "disconnects_total",
			Help:      "Session terminations by cause.",
		}, []string{"cause"}),
		fatals: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "exchange_client",
			Name:      "fatal_errors_total",
			Help:      "Fatal session errors by cause.",
		}, []string{"cause"}),
		journalDrop: f.NewCounter(prometheus.CounterOpts{
			Namespace: "exchange_client",
			Name:      "journal_dropped_total",
			Help:      "Journal entries dropped because the writer queue was full.",
		}),
	}
}

func (m *Metrics) IncInbound(kind string) {
	if m == nil {
		return
	}
	m.inbound.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncOutbound(kind string) {
	if m == nil {
		return
	}
	m.outbound.WithLabelValues(kind).Inc()
}

// ObserveRequest records the round trip of one resolved request.
func (m *Metrics) ObserveRequest(d time.Duration) {
	if m == nil {
		return
	}
	m.latency.Observe(d.Seconds())
}

// SetPending records the waiters of one connection's correlator.
func (m *Metrics) SetPending(conn string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(conn).Set(float64(n))
}

func (m *Metrics) IncDisconnect(cause string) {
	if m == nil {
		return
	}
	m.disconnects.WithLabelValues(cause).Inc()
}

func (m *Metrics) IncFatal(cause string) {
	if m == nil {
		return
	}
	m.fatals.WithLabelValues(cause).Inc()
}

func (m *Metrics) IncJournalDrop() {
	if m == nil {
		return
	}
	m.journalDrop.Inc()
}
