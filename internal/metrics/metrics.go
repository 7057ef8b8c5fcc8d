// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "unify"

// Presence check results
const (
	PresenceMember       = "member"
	PresenceAbsent       = "absent"
	PresenceUnauthorized = "unauthorized"
	PresenceForbidden    = "forbidden"
	PresenceError        = "error"
)

// Dispatch results
const (
	DispatchSent     = "sent"
	DispatchRejected = "rejected"
	DispatchFailed   = "failed"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	presenceChecks  *prometheus.CounterVec
	dispatches      *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	discordDuration *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		presenceChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presence_checks_total",
			Help:      "Bot membership checks by result.",
		}, []string{"result"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_welcome_dispatches_total",
			Help:      "Test welcome messages by result.",
		}, []string{"result"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Configuration store failures by operation.",
		}, []string{"op"}),
		discordDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discord_request_duration_seconds",
			Help:      "Latency of Discord REST calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.presenceChecks,
		m.dispatches,
		m.storeErrors,
		m.discordDuration,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PresenceCheck(result string) {
	if m == nil {
		return
	}
	m.presenceChecks.WithLabelValues(result).Inc()
}

func (m *Metrics) Dispatch(result string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(result).Inc()
}

func (m *Metrics) StoreError(op string) {
	if m == nil {
		return
	}
	m.storeErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveDiscord(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.discordDuration.WithLabelValues(operation).Observe(seconds)
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
