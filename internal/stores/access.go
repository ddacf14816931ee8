package stores

import (
	"context"
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// AccessChecker reports whether a merchant may act on a store.
type AccessChecker interface {
	CanAccess(ctx context.Context, storeID, merchantID string) (bool, error)
}

// RequireAccess rejects requests whose merchant neither owns nor joined the
// current store. Denials answer 404 so store existence is not disclosed.
func RequireAccess(checker AccessChecker, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchantID, err := tenancy.RequireMerchantID(r)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			storeID, err := tenancy.RequireStoreID(r)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			ok, err := checker.CanAccess(r.Context(), storeID, merchantID)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			if !ok {
				logging.FromContext(r.Context(), logger).Warn("store access denied",
					"store_id", storeID,
					"merchant_id", merchantID,
				)
				apperrors.Write(w, r, logger, ErrStoreNotFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ManagerChecker reports whether a merchant may change a store's configuration.
type ManagerChecker interface {
	CanManage(ctx context.Context, storeID, merchantID string) (bool, error)
}

// RequireManager rejects members without management rights with 403. It runs
// after RequireAccess, so the store is already known to be visible.
func RequireManager(checker ManagerChecker, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			merchantID, err := tenancy.RequireMerchantID(r)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			storeID, err := tenancy.RequireStoreID(r)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			ok, err := checker.CanManage(r.Context(), storeID, merchantID)
			if err != nil {
				apperrors.Write(w, r, logger, err)
				return
			}
			if !ok {
				apperrors.Write(w, r, logger, ErrNotManager)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
