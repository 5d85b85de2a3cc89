package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	TokenExchanges  *prometheus.CounterVec
	UserInfo        *prometheus.CounterVec
	Authorizations  *prometheus.CounterVec
	GateRedirects   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TokenExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_token_exchanges_total",
			Help: "Token endpoint calls by result.",
		}, []string{"result"}),
		UserInfo: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_userinfo_requests_total",
			Help: "Userinfo endpoint calls by result.",
		}, []string{"result"}),
		Authorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "oauth_authorizations_total",
			Help: "Consent decisions by outcome.",
		}, []string{"decision"}),
		GateRedirects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_gate_redirects_total",
			Help: "Session gate redirects by target.",
		}, []string{"target"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.TokenExchanges,
		m.UserInfo,
		m.Authorizations,
		m.GateRedirects,
		m.RequestDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
