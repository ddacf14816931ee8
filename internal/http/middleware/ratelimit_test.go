package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wolfman30/storefront-platform/internal/ratelimit"
)

type stubLimiter struct {
	res  ratelimit.Result
	err  error
	keys []string
}

func (s *stubLimiter) Allow(ctx context.Context, key string) (ratelimit.Result, error) {
	s.keys = append(s.keys, key)
	return s.res, s.err
}

func TestRateLimitRejects(t *testing.T) {
	limiter := &stubLimiter{res: ratelimit.Result{Allowed: false, RetryAfter: 1500 * time.Millisecond}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", nil)
	req.RemoteAddr = "10.0.0.1:51234"
	req.Header.Set("X-Real-Ip", "203.0.113.9")
	rec := httptest.NewRecorder()

	RateLimit(limiter, "auth:", nil, nil)(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "2" {
		t.Fatalf("expected Retry-After rounded up to 2, got %q", rec.Header().Get("Retry-After"))
	}
	if len(limiter.keys) != 1 || limiter.keys[0] != "auth:10.0.0.1" {
		t.Fatalf("unexpected limiter keys %v", limiter.keys)
	}
}

func TestRateLimitAllowsAndFailsOpen(t *testing.T) {
	for _, limiter := range []*stubLimiter{
		{res: ratelimit.Result{Allowed: true}},
		{err: errors.New("redis down")},
	} {
		called := false
		rec := httptest.NewRecorder()
		RateLimit(limiter, "", nil, nil)(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if !called || rec.Code != http.StatusOK {
			t.Fatalf("expected passthrough, got called=%v code=%d", called, rec.Code)
		}
	}
}

func TestRateLimitWithMemoryLimiter(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(1, time.Hour)
	defer limiter.Close()
	mw := RateLimit(limiter, "", nil, nil)(okHandler(nil))

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	second := httptest.NewRecorder()
	mw.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))

	if first.Code != http.StatusOK || second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 200 then 429, got %d then %d", first.Code, second.Code)
	}
}

func TestClientIPIgnoresClientHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/leads", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	req.Header.Set("X-Real-Ip", "203.0.113.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.2")
	if got := ClientIP(req); got != "198.51.100.7" {
		t.Fatalf("expected connection address, got %q", got)
	}

	req.RemoteAddr = "198.51.100.8"
	if got := ClientIP(req); got != "198.51.100.8" {
		t.Fatalf("expected bare address kept, got %q", got)
	}
}

func TestRateLimitRotatingHeaderStillLimited(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(2, time.Hour)
	defer limiter.Close()
	mw := RateLimit(limiter, "otp:", nil, nil)(okHandler(nil))

	codes := make([]int, 0, 3)
	for _, forged := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/otp/verify", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		req.Header.Set("X-Real-Ip", forged)
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("expected third request limited, got %v", codes)
	}
}
