package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// RequestLogger emits structured logs for every HTTP request and stores a
// request-scoped logger in the context.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := chimw.GetReqID(r.Context())
			if reqID == "" {
				reqID = r.Header.Get("X-Request-ID")
			}
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			reqLogger := logger.With("request_id", reqID)
			if storeID, ok := tenancy.GetStoreID(r); ok {
				reqLogger = reqLogger.With("store_id", storeID)
			}
			r = r.WithContext(logging.WithContext(r.Context(), reqLogger))

			reqLogger.Debug("request started",
				"method", r.Method,
				"path", r.URL.Path,
				"remote_ip", r.RemoteAddr,
			)
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
			}
			// The authenticator sets the user header on the shared header map.
			if userID, ok := tenancy.GetMerchantID(r); ok {
				attrs = append(attrs, "user_id", userID)
			}
			if status >= http.StatusInternalServerError {
				reqLogger.Error("request completed", attrs...)
				return
			}
			reqLogger.Info("request completed", attrs...)
		})
	}
}
