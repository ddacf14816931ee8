// Package resolver maps an inbound host to the store it serves.
package resolver

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/wolfman30/storefront-platform/internal/observability/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("storefront/resolver")

// Lookup performs the point queries used during resolution. Both return "" when nothing matches.
type Lookup interface {
	StoreIDByCustomDomain(ctx context.Context, domain string) (string, error)
	StoreIDBySubdomain(ctx context.Context, subdomain string) (string, error)
}

// Resolver turns a Host header into a store id.
type Resolver struct {
	lookup  Lookup
	metrics *metrics.ResolverMetrics
}

// New creates a resolver. metrics may be nil.
func New(lookup Lookup, m *metrics.ResolverMetrics) *Resolver {
	if lookup == nil {
		panic("resolver: lookup required")
	}
	return &Resolver{lookup: lookup, metrics: m}
}

// Resolve returns the store id for host, or "" when no store is served there.
// A custom domain match wins over a subdomain match.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if host == "" {
		return "", nil
	}
	start := time.Now()
	ctx, span := tracer.Start(ctx, "resolver.resolve")
	defer span.End()
	span.SetAttributes(attribute.String("http.host", host))

	bare := StripPort(host)
	if bare != "" {
		id, err := r.lookup.StoreIDByCustomDomain(ctx, bare)
		if err != nil {
			return "", r.fail(span, start, err)
		}
		if id != "" {
			r.done(span, start, "custom_domain", id)
			return id, nil
		}
	}

	candidate := CandidateSubdomain(host)
	if candidate == "" {
		r.done(span, start, "none", "")
		return "", nil
	}
	id, err := r.lookup.StoreIDBySubdomain(ctx, candidate)
	if err != nil {
		return "", r.fail(span, start, err)
	}
	if id == "" {
		r.done(span, start, "none", "")
		return "", nil
	}
	r.done(span, start, "subdomain", id)
	return id, nil
}

func (r *Resolver) done(span trace.Span, start time.Time, match, storeID string) {
	span.SetAttributes(attribute.String("resolver.match", match))
	if storeID != "" {
		span.SetAttributes(attribute.String("store.id", storeID))
	}
	r.metrics.ObserveResolution(match, time.Since(start).Seconds())
}

func (r *Resolver) fail(span trace.Span, start time.Time, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "store lookup failed")
	r.metrics.ObserveResolution("error", time.Since(start).Seconds())
	return err
}

// StripPort removes a trailing :port and IPv6 brackets.
func StripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}

// CandidateSubdomain derives the subdomain label a host may name.
// Local hosts ("acme.localhost") need two labels; public hosts need three
// so the apex domain never resolves. "www" is never a candidate.
func CandidateSubdomain(host string) string {
	bare := StripPort(host)
	if bare == "" {
		return ""
	}
	labels := strings.Split(bare, ".")
	minLabels := 3
	if strings.Contains(bare, "localhost") {
		minLabels = 2
	}
	if len(labels) < minLabels || labels[0] == "" || labels[0] == "www" {
		return ""
	}
	return labels[0]
}
