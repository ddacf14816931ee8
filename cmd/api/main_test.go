package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	appconfig "github.com/wolfman30/storefront-platform/internal/config"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		AuthCookieName:       "token",
		OTPRateLimit:         5,
		OTPRateWindow:        time.Minute,
		PublicRateLimit:      5,
		PublicRateWindow:     time.Minute,
		InviteTTL:            time.Hour,
		RequestTimeout:       5 * time.Second,
		ResolveHostInProcess: true,
	}
}

func TestBuildAppInMemory(t *testing.T) {
	app, err := buildApp(context.Background(), testConfig(), logging.New("error"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "storefront_http_requests_total") {
		t.Fatalf("expected request counter to be exported")
	}
}

func TestBuildAppWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisAddr = mr.Addr()

	app, err := buildApp(context.Background(), cfg, logging.New("error"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer app.Close()

	rr := httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"redis":"ok"`) {
		t.Fatalf("expected redis check to pass, got %d %s", rr.Code, rr.Body.String())
	}

	body := strings.NewReader(`{"email":"owner@example.com"}`)
	rr = httptest.NewRecorder()
	app.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/auth/otp/request", body))
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d %s", rr.Code, rr.Body.String())
	}
	if len(mr.Keys()) == 0 {
		t.Fatalf("expected code stored in redis")
	}
}

func TestBuildAppBadDatabaseURL(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseURL = "://bad"
	if _, err := buildApp(context.Background(), cfg, logging.New("error")); err == nil {
		t.Fatalf("expected error for unparsable database url")
	}
}
