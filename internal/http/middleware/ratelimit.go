package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/ratelimit"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// KeyFunc derives the limiter key for a request.
type KeyFunc func(r *http.Request) string

// ClientIP keys requests by the connection address without its port.
// Forwarding headers are only honoured through RemoteAddr, which chi's RealIP
// rewrites when the router is configured to trust its proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests exceeding the limiter budget with 429.
// Limiter failures are logged and the request is let through.
func RateLimit(limiter ratelimit.Limiter, prefix string, key KeyFunc, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), prefix+key(r))
			if err != nil {
				logging.FromContext(r.Context(), logger).Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
				}
				apperrors.Write(w, r, logger, apperrors.ErrRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
