package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "consultation"

	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultRetry   = "retry"
	ResultDead    = "dead"
	ResultMiss    = "miss"
)

// Metrics groups the counters the workflow reports. A nil *Metrics is a valid no-op.
type Metrics struct {
	gatherer prometheus.Gatherer

	outboxProcessed      *prometheus.CounterVec
	publishTotal         *prometheus.CounterVec
	collaboratorTotal    *prometheus.CounterVec
	orchestrationSeconds *prometheus.HistogramVec
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		gatherer: reg,
		outboxProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_processed_total",
			Help:      "Outbox rows handled by the relay",
		}, []string{"kind", "result"}),
		publishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "Messages published to the bus",
		}, []string{"exchange", "result"}),
		collaboratorTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_total",
			Help:      "Calls made to external collaborators",
		}, []string{"collaborator", "result"}),
		orchestrationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "orchestration_seconds",
			Help:      "Duration of one orchestration run",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.outboxProcessed,
		m.publishTotal,
		m.collaboratorTotal,
		m.orchestrationSeconds,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveOutbox(kind, result string) {
	if m == nil {
		return
	}

	m.outboxProcessed.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) ObservePublish(exchange string, err error) {
	if m == nil {
		return
	}

	m.publishTotal.WithLabelValues(exchange, resultOf(err)).Inc()
}

func (m *Metrics) ObserveCollaborator(collaborator, result string) {
	if m == nil {
		return
	}

	m.collaboratorTotal.WithLabelValues(collaborator, result).Inc()
}

func (m *Metrics) ObserveOrchestration(kind string, started time.Time) {
	if m == nil {
		return
	}

	m.orchestrationSeconds.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}

	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func resultOf(err error) string {
	if err != nil {
		return ResultFailure
	}

	return ResultSuccess
}
