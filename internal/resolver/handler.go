package resolver

import (
	"net/http"
	"strings"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/http/respond"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// ResolveResponse is the body of GET /api/internal/resolve-store.
type ResolveResponse struct {
	StoreID *string `json:"storeId"`
}

// Handler exposes resolution to the edge layer.
type Handler struct {
	resolver *Resolver
	logger   *logging.Logger
}

// NewHandler creates a new resolver handler
func NewHandler(resolver *Resolver, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{resolver: resolver, logger: logger}
}

// Resolve handles GET /api/internal/resolve-store?host=<host>.
// Without a host parameter the request's own Host is resolved.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	host := strings.TrimSpace(r.URL.Query().Get("host"))
	if host == "" {
		host = r.Host
	}
	id, err := h.resolver.Resolve(r.Context(), host)
	if err != nil {
		apperrors.Write(w, r, h.logger, apperrors.Unexpected(err))
		return
	}
	var resp ResolveResponse
	if id != "" {
		resp.StoreID = &id
	}
	respond.JSON(w, http.StatusOK, resp)
}
