package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Mutation outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeForbidden = "forbidden"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics owns the service's collectors on a private registry, so several
// instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	caseMutationsTotal  *prometheus.CounterVec
	auditFailuresTotal  prometheus.Counter
	loginAttemptsTotal  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		caseMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "case_mutations_total",
				Help: "Mutating case operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		auditFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audit_write_failures_total",
				Help: "Audit entries that could not be written after a successful mutation",
			},
		),
		loginAttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.caseMutationsTotal,
		m.auditFailuresTotal,
		m.loginAttemptsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, endpoint string, status int, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, statusLabel(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(seconds)
}

// Mutation counts a case operation result.
func (m *Metrics) Mutation(operation, outcome string) {
	m.caseMutationsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) AuditFailure() {
	m.auditFailuresTotal.Inc()
}

func (m *Metrics) Login(result string) {
	m.loginAttemptsTotal.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
