package stores

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// Handler handles HTTP requests for stores
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new stores handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListStoresResponse is the response for GET /api/stores
type ListStoresResponse struct {
	Stores []*Store `json:"stores"`
	Count  int      `json:"count"`
}

// Create handles POST /api/stores
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	merchantID, err := tenancy.RequireMerchantID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var req CreateStoreRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	req.MerchantID = merchantID

	store, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	logging.FromContext(r.Context(), h.logger).Info("store created",
		"store_id", store.ID,
		"subdomain", store.Subdomain,
		"merchant_id", merchantID,
	)
	respond.JSON(w, http.StatusCreated, store)
}

// List handles GET /api/stores
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	merchantID, err := tenancy.RequireMerchantID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	list, err := h.repo.ListVisibleToMerchant(r.Context(), merchantID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*Store{}
	}
	respond.JSON(w, http.StatusOK, ListStoresResponse{Stores: list, Count: len(list)})
}

// Current handles GET /api/store
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	store, err := h.repo.GetByID(r.Context(), storeID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, store)
}

// UpdateSettings handles PUT and PATCH /api/store/settings
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var settings json.RawMessage
	if err := respond.Decode(w, r, &settings); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	store, err := h.repo.UpdateSettings(r.Context(), storeID, settings)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, store)
}

// UpdateDomain handles PUT /api/store/domain
func (h *Handler) UpdateDomain(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var req UpdateDomainRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	store, err := h.repo.UpdateCustomDomain(r.Context(), storeID, req.CustomDomain)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	logging.FromContext(r.Context(), h.logger).Info("store domain updated",
		"store_id", store.ID,
		"custom_domain", store.Domain(),
	)
	respond.JSON(w, http.StatusOK, store)
}
