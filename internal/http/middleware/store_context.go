package middleware

import (
	"context"
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// StoreResolver maps a host to a store id ("" when none).
type StoreResolver interface {
	Resolve(ctx context.Context, host string) (string, error)
}

// StoreContext fills the trusted store header. A value already vouched for by
// the edge layer is kept; otherwise the request host is resolved in process
// when resolver is non-nil. Requests for hosts without a store continue
// without store context.
func StoreContext(resolver StoreResolver, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := tenancy.GetStoreID(r); !ok && resolver != nil {
				id, err := resolver.Resolve(r.Context(), r.Host)
				if err != nil {
					apperrors.Write(w, r, logger, apperrors.Unexpected(err))
					return
				}
				if id != "" {
					r.Header.Set(tenancy.HeaderStoreID, id)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
