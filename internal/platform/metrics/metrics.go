package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	UsersCreated   prometheus.Counter
	Logins         *prometheus.CounterVec
	AuthFailures   *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	QuoteRequests    *prometheus.CounterVec
	QuoteLatency     prometheus.Histogram
	QuoteCircuitOpen prometheus.Gauge
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tickerdesk_users_created_total",
			Help: "Total number of users created",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerdesk_logins_total",
			Help: "Total number of successful logins, labeled by strategy",
		}, []string{"strategy"}),
		AuthFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerdesk_auth_failures_total",
			Help: "Total number of authentication failures, labeled by reason",
		}, []string{"reason"}),
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tickerdesk_active_sessions",
			Help: "Current number of active sessions",
		}),
		QuoteRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerdesk_quote_requests_total",
			Help: "Total number of upstream quote requests, labeled by outcome",
		}, []string{"outcome"}),
		QuoteLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "tickerdesk_quote_latency_seconds",
			Help:    "Latency of upstream quote requests in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		QuoteCircuitOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "tickerdesk_quote_circuit_open",
			Help: "1 when the upstream quote circuit breaker is open, 0 when closed",
		}),
	}
}

// Nil-safe helpers so components can run without metrics wired (tests, tools).

// IncrementAuthFailures records an authentication failure with a reason label.
func (m *Metrics) IncrementAuthFailures(reason string) {
	if m == nil {
		return
	}
	m.AuthFailures.WithLabelValues(reason).Inc()
}

// IncrementUsersCreated records a newly provisioned user.
func (m *Metrics) IncrementUsersCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// IncrementLogins records a successful login for the given strategy.
func (m *Metrics) IncrementLogins(strategy string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(strategy).Inc()
}

// SessionOpened increments the active session gauge.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.ActiveSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.ActiveSessions.Dec()
}

// ObserveQuote records the outcome and latency of one upstream quote request.
func (m *Metrics) ObserveQuote(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.QuoteRequests.WithLabelValues(outcome).Inc()
	m.QuoteLatency.Observe(seconds)
}

// SetQuoteCircuitOpen reflects the circuit breaker state as a gauge.
func (m *Metrics) SetQuoteCircuitOpen(open bool) {
	if m == nil {
		return
	}
	if open {
		m.QuoteCircuitOpen.Set(1)
	} else {
		m.QuoteCircuitOpen.Set(0)
	}
}
