package otp

import (
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/auth"
	"github.com/wolfman30/storefront-platform/internal/http/middleware"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/internal/merchants"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// RequestCodeRequest is the body of POST /api/auth/otp/request.
type RequestCodeRequest struct {
	Email string `json:"email"`
}

// VerifyCodeRequest is the body of POST /api/auth/otp/verify.
type VerifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Handler serves the login endpoints.
type Handler struct {
	svc       *Service
	merchants merchants.Repository
	cookie    auth.CookieConfig
	logger    *logging.Logger
}

// NewHandler creates a new login handler
func NewHandler(svc *Service, repo merchants.Repository, cookie auth.CookieConfig, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, merchants: repo, cookie: cookie, logger: logger}
}

// RequestCode handles POST /api/auth/otp/request
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req RequestCodeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if err := h.svc.Request(r.Context(), req.Email, middleware.ClientIP(r)); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusAccepted, map[string]bool{"sent": true})
}

// VerifyCode handles POST /api/auth/otp/verify
func (h *Handler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	session, err := h.svc.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	auth.SetSessionCookie(w, h.cookie, session.Token, session.ExpiresAt)
	respond.JSON(w, http.StatusOK, session)
}

// Logout handles POST /api/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me. The route sits under the public auth prefix,
// so the token is verified here rather than by the authenticator.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	merchantID, ok := tenancy.GetMerchantID(r)
	if !ok {
		token := auth.ExtractToken(r, h.cookie.Name)
		if token == "" {
			apperrors.Write(w, r, h.logger, apperrors.ErrMissingCredential)
			return
		}
		id, err := h.svc.tokens.Verify(token)
		if err != nil {
			apperrors.Write(w, r, h.logger, err)
			return
		}
		merchantID = id
	}
	merchant, err := h.merchants.GetByID(r.Context(), merchantID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, merchant)
}
