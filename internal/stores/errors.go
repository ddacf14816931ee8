package stores

import "github.com/wolfman30/storefront-platform/internal/apperrors"

var (
	ErrStoreNotFound     = apperrors.NotFound("store_not_found", "store not found")
	ErrSubdomainTaken    = apperrors.Conflict("subdomain_taken", "subdomain is already in use")
	ErrDomainTaken       = apperrors.Conflict("custom_domain_taken", "custom domain is already in use")
	ErrInvalidSubdomain  = apperrors.Validation("invalid_subdomain", "subdomain must be lowercase letters, digits and single hyphens")
	ErrReservedSubdomain = apperrors.Validation("reserved_subdomain", "subdomain is reserved")
	ErrInvalidDomain     = apperrors.Validation("invalid_custom_domain", "custom domain must be a bare hostname")
	ErrInvalidSettings   = apperrors.Validation("invalid_settings", "settings must be a JSON object")
	ErrMissingOwner      = apperrors.Validation("missing_owner", "store owner is required")
	ErrNotManager        = apperrors.Forbidden("store_forbidden", "only the owner or an admin can change store configuration")
)
