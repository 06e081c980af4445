package webhook

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts webhook deliveries by event type and disposition.
type Metrics struct {
	events *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// EventMetrics returns the singleton webhook metrics registry.
func EventMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return metrics
}

// ResetMetricsForTest resets the metrics singleton for tests.
func ResetMetricsForTest() {
	metricsOnce = sync.Once{}
	metrics = nil
}

func newMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stripesync_webhook_events_total",
		Help: "Webhook deliveries by event type and disposition.",
	}, []string{"event_type", "disposition"})

	registerer.MustRegister(events)

	return &Metrics{events: events}
}

// IncEvent counts one delivery. eventType must stay low-cardinality, so
// unknown types are recorded under "unknown".
func (m *Metrics) IncEvent(eventType, disposition string) {
	if m == nil || m.events == nil {
		return
	}
	m.events.WithLabelValues(eventType, disposition).Inc()
}
