// Package metrics exposes Prometheus counters for published benchmark messages.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	messagesProduced *prometheus.CounterVec
	bytesProduced    *prometheus.CounterVec
	produceErrors    *prometheus.CounterVec
	produceLatency   *prometheus.HistogramVec
}

// New registers the benchmark collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		messagesProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_messages_produced_total",
			Help: "Total number of messages successfully produced.",
		}, []string{"publisher", "cid"}),

		bytesProduced: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_bytes_produced_total",
			Help: "Total bytes of message payloads produced.",
		}, []string{"publisher", "cid"}),

		produceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "benchmark_produce_errors_total",
			Help: "Total number of produce errors.",
		}, []string{"publisher", "cid"}),

		produceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "benchmark_produce_latency_seconds",
			Help:    "Time spent handing a message to the publisher.",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"publisher", "cid"}),
	}
}

// ObserveSent records one successfully published payload.
func (m *Metrics) ObserveSent(publisher, cid string, size int, elapsed time.Duration) {
	m.messagesProduced.WithLabelValues(publisher, cid).Inc()
	m.bytesProduced.WithLabelValues(publisher, cid).Add(float64(size))
	m.produceLatency.WithLabelValues(publisher, cid).Observe(elapsed.Seconds())
}

// ObserveErrors records n failed publish attempts.
func (m *Metrics) ObserveErrors(publisher, cid string, n int) {
	m.produceErrors.WithLabelValues(publisher, cid).Add(float64(n))
}
