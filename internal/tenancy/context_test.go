package tenancy

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

func TestRequireStoreIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)

	_, err := RequireStoreID(req)
	if !errors.Is(err, apperrors.ErrMissingStore) {
		t.Fatalf("expected ErrMissingStore, got %v", err)
	}
	if apperrors.From(err).Status() != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing store context")
	}
}

func TestRequireStoreIDReturnsValueUnmodified(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(HeaderStoreID, "  Store-ABC ")

	got, err := RequireStoreID(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  Store-ABC " {
		t.Fatalf("expected header value untouched, got %q", got)
	}
}

func TestRequireMerchantID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/stores", nil)
	if _, err := RequireMerchantID(req); !errors.Is(err, apperrors.ErrMissingIdentity) {
		t.Fatalf("expected ErrMissingIdentity, got %v", err)
	}

	req.Header.Set(HeaderUserID, "merchant-9")
	got, err := RequireMerchantID(req)
	if err != nil || got != "merchant-9" {
		t.Fatalf("expected merchant-9, got %q err=%v", got, err)
	}
	if v, ok := GetMerchantID(req); !ok || v != "merchant-9" {
		t.Fatalf("GetMerchantID mismatch: %q %v", v, ok)
	}
}
