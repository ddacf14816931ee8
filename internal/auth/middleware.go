package auth

import (
	"net/http"
	"strings"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/observability/metrics"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("storefront/auth")

// DefaultCookieName is the cookie that carries the merchant token.
const DefaultCookieName = "token"

// ErrSignInRequired is the rejection written for non-API paths.
var ErrSignInRequired = apperrors.New(apperrors.KindAuthentication, "sign_in_required", "sign in to continue")

// RejectFunc writes the 401 response for a rejected request.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// Options configures the authenticator.
type Options struct {
	Tokens       *TokenManager
	CookieName   string
	PublicRoutes []PublicRoute
	// RejectPage handles rejected non-API requests. Defaults to a JSON body
	// with code sign_in_required.
	RejectPage RejectFunc
	Logger     *logging.Logger
	Metrics    *metrics.AuthMetrics
}

// Authenticator gates every non-public route behind a verified merchant token.
// On success the trusted user header and the context merchant id are set.
func Authenticator(opts Options) func(http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	routes := opts.PublicRoutes
	if routes == nil {
		routes = DefaultPublicRoutes()
	}
	rejectPage := opts.RejectPage
	if rejectPage == nil {
		rejectPage = func(w http.ResponseWriter, r *http.Request, _ error) {
			apperrors.Write(w, r, logger, ErrSignInRequired)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(routes, r) {
				opts.Metrics.ObserveDecision("public", "")
				next.ServeHTTP(w, r)
				return
			}

			ctx, span := tracer.Start(r.Context(), "auth.authenticate")
			defer span.End()
			r = r.WithContext(ctx)

			if !opts.Tokens.Configured() {
				span.SetStatus(codes.Error, "jwt secret not configured")
				opts.Metrics.ObserveDecision("error", "configuration")
				apperrors.Write(w, r, logger, apperrors.ErrConfiguration.WithMessage("authentication is not configured"))
				return
			}

			token := ExtractToken(r, cookieName)
			if token == "" {
				opts.Metrics.ObserveDecision("rejected", "missing")
				reject(w, r, logger, rejectPage, apperrors.ErrMissingCredential)
				return
			}

			merchantID, err := opts.Tokens.Verify(token)
			if err != nil {
				appErr := apperrors.From(err)
				span.SetStatus(codes.Error, appErr.Code)
				opts.Metrics.ObserveDecision("rejected", appErr.Code)
				if appErr.Kind != apperrors.KindAuthentication {
					apperrors.Write(w, r, logger, appErr)
					return
				}
				logging.FromContext(r.Context(), logger).Debug("token rejected", "code", appErr.Code, "path", r.URL.Path)
				reject(w, r, logger, rejectPage, appErr)
				return
			}

			span.SetAttributes(attribute.String("merchant.id", merchantID))
			opts.Metrics.ObserveDecision("accepted", "")
			r.Header.Set(tenancy.HeaderUserID, merchantID)
			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *logging.Logger, page RejectFunc, err error) {
	if isAPIPath(r.URL.Path) {
		apperrors.Write(w, r, logger, err)
		return
	}
	page(w, r, err)
}

// ExtractToken returns the bearer token if present, otherwise the cookie value.
func ExtractToken(r *http.Request, cookieName string) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, value, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			if value = strings.TrimSpace(value); value != "" {
				return value
			}
		}
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
