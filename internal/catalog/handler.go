package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

const (
	defaultLimit = 50
	maxLimit     = 200
	maxOffset    = 10000
)

// Handler handles HTTP requests for the catalog
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// ListProductsResponse is the response for GET /api/products
type ListProductsResponse struct {
	Products []*Product `json:"products"`
	Count    int        `json:"count"`
	Offset   int        `json:"offset"`
	Limit    int        `json:"limit"`
}

// ListProducts handles GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	q := r.URL.Query()
	filter := ProductFilter{
		CategoryID: q.Get("categoryId"),
		BrandID:    q.Get("brandId"),
		Limit:      defaultLimit,
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= maxLimit {
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 || offset > maxOffset {
			apperrors.Write(w, r, h.logger, ErrInvalidOffset)
			return
		}
		filter.Offset = offset
	}

	products, err := h.repo.ListProducts(r.Context(), storeID, filter)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if products == nil {
		products = []*Product{}
	}
	respond.JSON(w, http.StatusOK, ListProductsResponse{
		Products: products,
		Count:    len(products),
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	})
}

// GetProduct handles GET /api/products/{productID}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	p, err := h.repo.GetProduct(r.Context(), storeID, chi.URLParam(r, "productID"))
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusOK, p)
}

// CreateProduct handles POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	var req CreateProductRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	req.StoreID = storeID

	p, err := h.repo.CreateProduct(r.Context(), &req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	logging.FromContext(r.Context(), h.logger).Info("product created", "product_id", p.ID, "store_id", storeID)
	respond.JSON(w, http.StatusCreated, p)
}

// ListCategories handles GET /api/categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	list, err := h.repo.ListCategories(r.Context(), storeID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*Category{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"categories": list, "count": len(list)})
}

// CreateCategory handles POST /api/categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeNamed(w, r)
	if !ok {
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}

// ListBrands handles GET /api/brands
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	list, err := h.repo.ListBrands(r.Context(), storeID)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	if list == nil {
		list = []*Brand{}
	}
	respond.JSON(w, http.StatusOK, map[string]any{"brands": list, "count": len(list)})
}

// CreateBrand handles POST /api/brands
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeNamed(w, r)
	if !ok {
		return
	}
	b, err := h.repo.CreateBrand(r.Context(), req)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return
	}
	respond.JSON(w, http.StatusCreated, b)
}

func (h *Handler) decodeNamed(w http.ResponseWriter, r *http.Request) (*CreateNamedRequest, bool) {
	storeID, err := tenancy.RequireStoreID(r)
	if err != nil {
		apperrors.Write(w, r, h.logger, err)
		return nil, false
	}
	var req CreateNamedRequest
	if err := respond.Decode(w, r, &req); err != nil {
		apperrors.Write(w, r, h.logger, err)
		return nil, false
	}
	req.StoreID = storeID
	return &req, true
}
