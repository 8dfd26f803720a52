package publisher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the audit emission path.
type Metrics struct {
	Emitted         prometheus.Counter
	Dropped         prometheus.Counter
	ForwardDropped  prometheus.Counter
	PersistFailures prometheus.Counter
}

// NewMetrics creates a Metrics instance with audit publisher metrics registered.
func NewMetrics() *Metrics {
	return &Metrics{
		Emitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anchorage_audit_events_emitted_total",
			Help: "Total number of audit events accepted by the publisher",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anchorage_audit_events_dropped_total",
			Help: "Total number of audit events dropped because the buffer was full",
		}),
		ForwardDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anchorage_audit_forward_dropped_total",
			Help: "Total number of audit events dropped from the forward tee",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anchorage_audit_persist_failures_total",
			Help: "Total number of audit event persistence failures",
		}),
	}
}

// IncEmitted increments the emitted counter.
func (m *Metrics) IncEmitted() {
	m.Emitted.Inc()
}

// IncDropped increments the dropped counter.
func (m *Metrics) IncDropped() {
	m.Dropped.Inc()
}

// IncForwardDropped increments the forward tee dropped counter.
func (m *Metrics) IncForwardDropped() {
	m.ForwardDropped.Inc()
}

// IncPersistFailures increments the persist failures counter.
func (m *Metrics) IncPersistFailures() {
	m.PersistFailures.Inc()
}
