package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BusMetrics counts broadcast bus publishes per topic.
type BusMetrics struct {
	publishes *prometheus.CounterVec
}

// NewBusMetrics registers the bus metrics on the provided registerer.
func NewBusMetrics(reg prometheus.Registerer) *BusMetrics {
	if reg == nil {
		return &BusMetrics{}
	}
	publishes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bus_publish_total",
		Help: "Broadcast bus publishes per topic.",
	}, []string{"topic"})
	reg.MustRegister(publishes)
	return &BusMetrics{publishes: publishes}
}

// IncPublish increments the publish counter for the named topic.
func (b *BusMetrics) IncPublish(topic string) {
	if b == nil || b.publishes == nil {
		return
	}
	b.publishes.WithLabelValues(normalizeLabel(topic)).Inc()
}

// AssistantMetrics records assistant session request outcomes.
type AssistantMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewAssistantMetrics registers the assistant metrics on the provided
// registerer.
func NewAssistantMetrics(reg prometheus.Registerer) *AssistantMetrics {
	if reg == nil {
		return &AssistantMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assistant_request_duration_seconds",
		Help:    "Duration of assistant completion requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_requests_total",
		Help: "Accepted assistant submissions.",
	}, []string{"outcome"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assistant_failures_total",
		Help: "Assistant completion failures by classified kind.",
	}, []string{"kind"})
	reg.MustRegister(duration, requests, failures)
	return &AssistantMetrics{
		duration: duration,
		requests: requests,
		failures: failures,
	}
}

// ObserveRequest records one completed submission with its outcome label.
func (a *AssistantMetrics) ObserveRequest(outcome string, duration time.Duration) {
	if a == nil || a.requests == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	a.requests.WithLabelValues(outcome).Inc()
	a.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncFailure increments the failure counter for the classified error kind.
func (a *AssistantMetrics) IncFailure(kind string) {
	if a == nil || a.failures == nil {
		return
	}
	a.failures.WithLabelValues(normalizeLabel(kind)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
