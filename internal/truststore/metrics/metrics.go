package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for trust-settings enumeration.
type Metrics struct {
	EnumerationsTotal  *prometheus.CounterVec
	EnumerationErrors  *prometheus.CounterVec
	EnumerationSeconds *prometheus.HistogramVec
	MatchesReturned    *prometheus.HistogramVec
	SettingsMutations  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		EnumerationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorage_truststore_enumerations_total",
			Help: "Total number of completed trust-settings enumerations",
		}, []string{"scope", "outcome"}),
		EnumerationErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorage_truststore_enumeration_errors_total",
			Help: "Total number of trust-settings enumerations aborted by a store error",
		}, []string{"scope", "outcome"}),
		EnumerationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "anchorage_truststore_enumeration_duration_seconds",
			Help:    "Duration of trust-settings enumerations",
			Buckets: prometheus.DefBuckets,
		}, []string{"scope", "outcome"}),
		MatchesReturned: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "anchorage_truststore_matches_returned",
			Help:    "Number of certificates returned per enumeration",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"scope", "outcome"}),
		SettingsMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "anchorage_truststore_settings_mutations_total",
			Help: "Total number of trust-settings writes and removals",
		}, []string{"domain", "operation"}),
	}
}

// ObserveEnumeration records one successful enumeration.
func (m *Metrics) ObserveEnumeration(scope, outcome string, matches int, elapsed time.Duration) {
	m.EnumerationsTotal.WithLabelValues(scope, outcome).Inc()
	m.EnumerationSeconds.WithLabelValues(scope, outcome).Observe(elapsed.Seconds())
	m.MatchesReturned.WithLabelValues(scope, outcome).Observe(float64(matches))
}

// IncrementEnumerationErrors records one failed enumeration.
func (m *Metrics) IncrementEnumerationErrors(scope, outcome string) {
	m.EnumerationErrors.WithLabelValues(scope, outcome).Inc()
}

// IncrementSettingsMutations records one settings write or removal.
func (m *Metrics) IncrementSettingsMutations(domain, operation string) {
	m.SettingsMutations.WithLabelValues(domain, operation).Inc()
}
