package team

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// Handler handles HTTP requests for store teams
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new team handler
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// ListMembersResponse is the response for GET /api/store/team
type ListMembersResponse struct {
	Members []*Member `json:"members"`
	Count   int       `json:"count"`
}

// Invite handles POST /api/store/team/invites
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	merchantID, storeID, err := identity(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var req InviteRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	invitation, err := h.svc.Invite(r.Context(), storeID, merchantID, req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, invitation)
}

// Accept handles POST /api/team/invites/accept
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	merchantID, err := tenancy.RequireMerchantID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var req AcceptRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	member, err := h.svc.Accept(r.Context(), req.Token, merchantID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, member)
}

// List handles GET /api/store/team
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	members, err := h.svc.List(r.Context(), storeID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if members == nil {
		members = []*Member{}
	}
	respond.JSON(w, http.StatusOK, ListMembersResponse{Members: members, Count: len(members)})
}

// Remove handles DELETE /api/store/team/{memberID}
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	merchantID, storeID, err := identity(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if err := h.svc.Remove(r.Context(), storeID, merchantID, chi.URLParam(r, "memberID")); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func identity(r *http.Request) (merchantID, storeID string, err error) {
	if merchantID, err = tenancy.RequireMerchantID(r); err != nil {
		return "", "", err
	}
	if storeID, err = tenancy.RequireStoreID(r); err != nil {
		return "", "", err
	}
	return merchantID, storeID, nil
}
