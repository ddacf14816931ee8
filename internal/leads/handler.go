package leads

import (
	"net/http"
	"strconv"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// Handler handles HTTP requests for leads
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// Create handles POST /api/leads from the storefront contact form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}

	var req CreateLeadRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	req.StoreID = storeID

	lead, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}

	logging.FromContext(r.Context(), h.logger).Info("lead created",
		"lead_id", lead.ID,
		"store_id", storeID,
		"score", lead.Score,
		"bucket", string(lead.Bucket),
	)
	respond.JSON(w, http.StatusCreated, lead)
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads  []*Lead `json:"leads"`
	Count  int     `json:"count"`
	Offset int     `json:"offset"`
	Limit  int     `json:"limit"`
}

// List handles GET /api/leads for the current store.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}

	q := r.URL.Query()
	bucket, err := ParseBucket(q.Get("bucket"))
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	filter := ListLeadsFilter{
		Bucket: bucket,
		Limit:  defaultLimit,
	}
	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= maxLimit {
			filter.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	leads, err := h.repo.ListByStore(r.Context(), storeID, filter)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if leads == nil {
		leads = []*Lead{}
	}
	respond.JSON(w, http.StatusOK, ListLeadsResponse{
		Leads:  leads,
		Count:  len(leads),
		Offset: filter.Offset,
		Limit:  filter.Limit,
	})
}
