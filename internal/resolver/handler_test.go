package resolver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func TestHandlerResolve(t *testing.T) {
	h := NewHandler(New(newFake(), nil), logging.New("error"))

	cases := []struct {
		target string
		host   string
		want   string
	}{
		{"/api/internal/resolve-store?host=acme.platform.com", "", `{"storeId":"store-acme"}`},
		{"/api/internal/resolve-store?host=platform.com", "", `{"storeId":null}`},
		{"/api/internal/resolve-store", "shop.acme.com", `{"storeId":"store-custom"}`},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)
		if tc.host != "" {
			req.Host = tc.host
		}
		rec := httptest.NewRecorder()
		h.Resolve(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", tc.target, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.target, tc.want, got)
		}
	}
}

func TestHandlerResolveLookupFailure(t *testing.T) {
	lookup := newFake()
	lookup.err = errors.New("db down")
	h := NewHandler(New(lookup, nil), logging.New("error"))

	req := httptest.NewRequest(http.MethodGet, "/api/internal/resolve-store?host=acme.platform.com", nil)
	rec := httptest.NewRecorder()
	h.Resolve(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Contains(body["message"].(string), "db down") {
		t.Fatalf("lookup error must not leak to clients")
	}
}
