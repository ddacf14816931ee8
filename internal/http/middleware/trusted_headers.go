package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/tenancy"
)

// HeaderEdgeSecret carries the shared secret proving a request passed the edge layer.
const HeaderEdgeSecret = "X-Edge-Secret"

// StripTrustedHeaders removes identity headers a client could forge. The user
// header is always removed. The store header survives only when the request
// presents the configured edge secret. The secret header never reaches handlers.
func StripTrustedHeaders(edgeSecret string) func(http.Handler) http.Handler {
	secret := []byte(edgeSecret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Header.Del(tenancy.HeaderUserID)
			presented := r.Header.Get(HeaderEdgeSecret)
			r.Header.Del(HeaderEdgeSecret)
			if len(secret) == 0 || subtle.ConstantTimeCompare([]byte(presented), secret) != 1 {
				r.Header.Del(tenancy.HeaderStoreID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
