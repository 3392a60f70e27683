// Package obs holds the prometheus instruments of the service. Metrics are
// registered on an injected registry so tests can build isolated sets.
package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authorization decision labels.
const (
	DecisionAllowed       = "allowed"
	DecisionDenied        = "denied"
	DecisionAdminOverride = "admin_override"
)

type Metrics struct {
	registry *prometheus.Registry

	InvitationsIssued *prometheus.CounterVec // kind
	Accepts           *prometheus.CounterVec // outcome
	AuthzDecisions    *prometheus.CounterVec // decision
	SignupTokens      *prometheus.CounterVec // op
	HousekeepingRuns  *prometheus.CounterVec // task, result

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	buildInfo           *prometheus.GaugeVec
}

// NewMetrics creates the instruments on a fresh registry which also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		InvitationsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_invitations_issued_total",
			Help: "Invitations issued, by kind.",
		}, []string{"kind"}),
		Accepts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_invitation_accepts_total",
			Help: "Invitation acceptance attempts, by outcome.",
		}, []string{"outcome"}),
		AuthzDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_authz_decisions_total",
			Help: "Role gate decisions, by decision.",
		}, []string{"decision"}),
		SignupTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_signup_tokens_total",
			Help: "Signup token operations, by op.",
		}, []string{"op"}),
		HousekeepingRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tenantry_housekeeping_runs_total",
			Help: "Housekeeping task runs, by task and result.",
		}, []string{"task", "result"}),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_in_flight_requests",
			Help: "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		buildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tenantry_build_info",
			Help: "Build information.",
		}, []string{"version"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.InvitationsIssued, m.Accepts, m.AuthzDecisions, m.SignupTokens, m.HousekeepingRuns,
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration, m.buildInfo,
	)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// SetBuildInfo publishes tenantry_build_info{version} 1.
func (m *Metrics) SetBuildInfo(version string) {
	m.buildInfo.WithLabelValues(version).Set(1)
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// The helpers below are nil-safe so services can run without metrics.

func (m *Metrics) IssuedInvitation(kind string) {
	if m != nil {
		m.InvitationsIssued.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) Accept(outcome string) {
	if m != nil {
		m.Accepts.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Authz(decision string) {
	if m != nil {
		m.AuthzDecisions.WithLabelValues(decision).Inc()
	}
}

func (m *Metrics) SignupToken(op string) {
	if m != nil {
		m.SignupTokens.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) Housekeeping(task string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.HousekeepingRuns.WithLabelValues(task, result).Inc()
}
