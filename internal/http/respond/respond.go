// Package respond holds the JSON helpers shared by HTTP handlers.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

const maxBodyBytes = 1 << 20

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Decode reads a single JSON object from the request body into dst.
// Unknown fields are rejected and the body is capped at 1 MiB.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return apperrors.ErrInvalidBody.WithMessage("request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.ErrInvalidBody.WithMessage("request body is required")
		}
		return apperrors.ErrInvalidBody.WithCause(err)
	}
	if dec.More() {
		return apperrors.ErrInvalidBody.WithMessage("request body must contain a single JSON object")
	}
	return nil
}
