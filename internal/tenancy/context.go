package tenancy

import (
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

// Trusted headers. Only the edge stage and the authenticator may set them;
// client-supplied values are stripped before either runs.
const (
	HeaderUserID  = "X-USER-ID"
	HeaderStoreID = "X-STORE-ID"
)

// GetStoreID reads the trusted store header. The value is returned as-is.
func GetStoreID(r *http.Request) (string, bool) {
	v := r.Header.Get(HeaderStoreID)
	return v, v != ""
}

// RequireStoreID is GetStoreID for handlers that cannot run without a tenant.
func RequireStoreID(r *http.Request) (string, error) {
	v, ok := GetStoreID(r)
	if !ok {
		return "", apperrors.ErrMissingStore
	}
	return v, nil
}

// GetMerchantID reads the trusted user header set by the authenticator.
func GetMerchantID(r *http.Request) (string, bool) {
	v := r.Header.Get(HeaderUserID)
	return v, v != ""
}

// RequireMerchantID is GetMerchantID for handlers behind authentication.
func RequireMerchantID(r *http.Request) (string, error) {
	v, ok := GetMerchantID(r)
	if !ok {
		return "", apperrors.ErrMissingIdentity
	}
	return v, nil
}
