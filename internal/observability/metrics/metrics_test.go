package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func gatheredNames(t *testing.T, reg *prometheus.Registry) map[string]bool {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.ObserveRequest("GET", "/api/products", 200, 0.01)
	names := gatheredNames(t, reg)
	if !names["storefront_http_requests_total"] || !names["storefront_http_request_duration_seconds"] {
		t.Fatalf("expected http metrics registered, got %v", names)
	}
}

func TestAuthAndResolverMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewAuthMetrics(reg).ObserveDecision("rejected", "missing")
	NewResolverMetrics(reg).ObserveResolution("subdomain", 0.002)
	NewOTPMetrics(reg).ObserveRequested("sent")
	names := gatheredNames(t, reg)
	for _, want := range []string{
		"storefront_auth_decisions_total",
		"storefront_resolver_resolutions_total",
		"storefront_resolver_latency_seconds",
		"storefront_otp_requested_total",
	} {
		if !names[want] {
			t.Fatalf("expected %s registered, got %v", want, names)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var h *HTTPMetrics
	h.ObserveRequest("GET", "/", 200, 0.1)
	var a *AuthMetrics
	a.ObserveDecision("accepted", "")
	var r *ResolverMetrics
	r.ObserveResolution("none", 0.1)
	var o *OTPMetrics
	o.ObserveRequested("sent")
	o.ObserveVerified("ok")
}
