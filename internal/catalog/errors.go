package catalog

import "github.com/wolfman30/storefront-platform/internal/apperrors"

var (
	ErrInvalidName      = apperrors.Validation("invalid_name", "name is required")
	ErrInvalidPrice     = apperrors.Validation("invalid_price", "priceCents must not be negative")
	ErrInvalidCurrency  = apperrors.Validation("invalid_currency", "currency must be a three letter ISO code")
	ErrInvalidOffset    = apperrors.Validation("invalid_offset", "offset must be between 0 and 10000")
	ErrUnknownReference = apperrors.Validation("unknown_reference", "category or brand does not belong to this store")
	ErrNameTaken        = apperrors.Conflict("name_taken", "name is already used in this store")
	ErrProductNotFound  = apperrors.NotFound("product_not_found", "product not found")
)
