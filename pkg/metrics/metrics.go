// Package metrics holds the prometheus collectors of the service. Every
// method is safe on a nil *Metrics so components can run without metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "groupstay"

const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"

	DirectionPublish = "publish"
	DirectionConsume = "consume"
)

type Metrics struct {
	registry *prometheus.Registry

	allocations  *prometheus.CounterVec
	alerts       *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	occupancy    *prometheus.GaugeVec
	kafka        *prometheus.CounterVec
	kafkaLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allocations_total",
			Help:      "Allocation requests by pool kind and outcome.",
		}, []string{"kind", "result"}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Alerts raised by type.",
		}, []string{"type"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_occupancy_ratio",
			Help:      "Used over total capacity per event and pool kind.",
		}, []string{"event", "kind"}),
		kafka: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_messages_total",
			Help:      "Kafka messages by direction and outcome.",
		}, []string{"direction", "result"}),
		kafkaLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_message_duration_seconds",
			Help:      "Time spent publishing or handling a kafka message.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.allocations,
		m.alerts,
		m.httpRequests,
		m.httpDuration,
		m.occupancy,
		m.kafka,
		m.kafkaLatency,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAllocation(kind, result string) {
	if m == nil {
		return
	}
	m.allocations.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObserveAlert(alertType string) {
	if m == nil {
		return
	}
	m.alerts.WithLabelValues(alertType).Inc()
}

func (m *Metrics) ObserveHTTP(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) SetOccupancy(event, kind string, ratio float64) {
	if m == nil {
		return
	}
	m.occupancy.WithLabelValues(event, kind).Set(ratio)
}

// ForgetEvent drops the occupancy series of a deleted event.
func (m *Metrics) ForgetEvent(event string) {
	if m == nil {
		return
	}
	m.occupancy.DeletePartialMatch(prometheus.Labels{"event": event})
}

func (m *Metrics) ObserveKafka(direction, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.kafka.WithLabelValues(direction, result).Inc()
	m.kafkaLatency.WithLabelValues(direction).Observe(elapsed.Seconds())
}
