package leads

import "github.com/wolfman30/storefront-platform/internal/apperrors"

var (
	// ErrInvalidName is returned when the name is invalid
	ErrInvalidName = apperrors.Validation("invalid_name", "name is required")

	// ErrMissingContact is returned when both email and phone are missing
	ErrMissingContact = apperrors.Validation("missing_contact", "either email or phone is required")

	// ErrInvalidBucket is returned for an unknown bucket filter
	ErrInvalidBucket = apperrors.Validation("invalid_bucket", "bucket must be hot, warm or cold")

	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = apperrors.NotFound("lead_not_found", "lead not found")
)
