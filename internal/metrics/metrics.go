// Package metrics defines the Prometheus instruments for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "solvix"

// Metrics holds the service counters and the registry they live in. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ProblemsCreated  prometheus.Counter
	SessionsCreated  *prometheus.CounterVec // source: problem, adhoc
	StepsRegenerated prometheus.Counter
	StepUpdates      *prometheus.CounterVec // status: pending, in_progress, done, unchanged
	MessagesAppended *prometheus.CounterVec // role
	RequestDuration  *prometheus.HistogramVec
}

// New creates the instruments on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ProblemsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "problems_created_total",
			Help:      "Total problems created.",
		}),
		SessionsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total sessions created by problem source.",
		}, []string{"source"}),
		StepsRegenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_regenerated_total",
			Help:      "Total step plan regenerations.",
		}),
		StepUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "step_updates_total",
			Help:      "Total step updates by resulting status.",
		}, []string{"status"}),
		MessagesAppended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_appended_total",
			Help:      "Total transcript messages appended by role.",
		}, []string{"role"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method, route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.ProblemsCreated,
		m.SessionsCreated,
		m.StepsRegenerated,
		m.StepUpdates,
		m.MessagesAppended,
		m.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ProblemCreated counts a new problem.
func (m *Metrics) ProblemCreated() {
	if m == nil {
		return
	}
	m.ProblemsCreated.Inc()
}

// SessionCreated counts a new session by source.
func (m *Metrics) SessionCreated(source string) {
	if m == nil {
		return
	}
	m.SessionsCreated.WithLabelValues(source).Inc()
}

// PlanRegenerated counts a step plan regeneration.
func (m *Metrics) PlanRegenerated() {
	if m == nil {
		return
	}
	m.StepsRegenerated.Inc()
}

// StepUpdated counts a step update by its resulting status.
func (m *Metrics) StepUpdated(status string) {
	if m == nil {
		return
	}
	m.StepUpdates.WithLabelValues(status).Inc()
}

// MessageAppended counts a transcript message by role. Roles are free
// form, so anything outside the conventional set is folded into "other".
func (m *Metrics) MessageAppended(role string) {
	if m == nil {
		return
	}
	switch role {
	case "user", "assistant", "system":
	default:
		role = "other"
	}
	m.MessagesAppended.WithLabelValues(role).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
