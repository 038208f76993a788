// Package metrics defines the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the application collectors. A nil *Metrics is valid and
// records nothing, so services under test can be built without a registry.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	LoginsTotal         *prometheus.CounterVec
	RegistrationsTotal  *prometheus.CounterVec
	PasswordResetsTotal *prometheus.CounterVec
	IdeaGenerations     *prometheus.CounterVec
}

// New creates the collectors and registers them, plus the Go runtime and
// process collectors, with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorverse_http_requests_total",
				Help: "HTTP requests by method and status code.",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "creatorverse_http_request_duration_seconds",
				Help:    "HTTP request latency by method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorverse_logins_total",
				Help: "Login attempts by role and result.",
			},
			[]string{"role", "result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorverse_registrations_total",
				Help: "Registration attempts by result.",
			},
			[]string{"result"},
		),
		PasswordResetsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorverse_password_resets_total",
				Help: "Password reset operations by stage (issue, consume) and result.",
			},
			[]string{"stage", "result"},
		),
		IdeaGenerations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "creatorverse_idea_generations_total",
				Help: "Idea generation calls by source (demo, live, fallback).",
			},
			[]string{"source"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.RegistrationsTotal,
		m.PasswordResetsTotal,
		m.IdeaGenerations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) ObserveHTTP(method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method).Observe(seconds)
}

func (m *Metrics) ObserveLogin(role, result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(role, result).Inc()
}

func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePasswordReset(stage, result string) {
	if m == nil {
		return
	}
	m.PasswordResetsTotal.WithLabelValues(stage, result).Inc()
}

func (m *Metrics) ObserveIdeaGeneration(source string) {
	if m == nil {
		return
	}
	m.IdeaGenerations.WithLabelValues(source).Inc()
}
