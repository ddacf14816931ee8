package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storefront"

func register(reg prometheus.Registerer, cs ...prometheus.Collector) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(cs...)
}

// HTTPMetrics exposes request counters/histograms for the API surface.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	register(reg, m.requestsTotal, m.requestDuration)
	return m
}

func (m *HTTPMetrics) ObserveRequest(method, route string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(seconds)
}

// AuthMetrics counts authenticator decisions.
type AuthMetrics struct {
	decisions *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "decisions_total",
			Help:      "Authenticator outcomes (public, accepted, rejected)",
		}, []string{"outcome", "reason"}),
	}
	register(reg, m.decisions)
	return m
}

func (m *AuthMetrics) ObserveDecision(outcome, reason string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome, reason).Inc()
}

// ResolverMetrics counts host to store resolutions.
type ResolverMetrics struct {
	resolutions *prometheus.CounterVec
	latency     prometheus.Histogram
}

func NewResolverMetrics(reg prometheus.Registerer) *ResolverMetrics {
	m := &ResolverMetrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "resolutions_total",
			Help:      "Store resolutions by match kind (custom_domain, subdomain, none, error)",
		}, []string{"match"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "resolver",
			Name:      "latency_seconds",
			Help:      "Latency of store resolution lookups",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	register(reg, m.resolutions, m.latency)
	return m
}

func (m *ResolverMetrics) ObserveResolution(match string, seconds float64) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(match).Inc()
	m.latency.Observe(seconds)
}

// OTPMetrics counts one-time code issuance and verification.
type OTPMetrics struct {
	requested *prometheus.CounterVec
	verified  *prometheus.CounterVec
}

func NewOTPMetrics(reg prometheus.Registerer) *OTPMetrics {
	m := &OTPMetrics{
		requested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "otp",
			Name:      "requested_total",
			Help:      "One-time codes requested by status",
		}, []string{"status"}),
		verified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "otp",
			Name:      "verified_total",
			Help:      "One-time code verifications by status",
		}, []string{"status"}),
	}
	register(reg, m.requested, m.verified)
	return m
}

func (m *OTPMetrics) ObserveRequested(status string) {
	if m == nil {
		return
	}
	m.requested.WithLabelValues(status).Inc()
}

func (m *OTPMetrics) ObserveVerified(status string) {
	if m == nil {
		return
	}
	m.verified.WithLabelValues(status).Inc()
}
