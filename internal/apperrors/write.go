package apperrors

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// Body is the JSON error envelope returned to clients.
type Body struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Write maps err to a status code and writes the JSON envelope.
// 500-class errors are logged with their cause; the cause never reaches the body.
func Write(w http.ResponseWriter, r *http.Request, logger *logging.Logger, err error) {
	appErr := From(err)
	if appErr == nil {
		appErr = ErrUnexpected
	}
	status := appErr.Status()

	if status >= http.StatusInternalServerError {
		log := logger
		if r != nil {
			log = logging.FromContext(r.Context(), logger)
		}
		if log == nil {
			log = logging.Default()
		}
		attrs := []any{"code", appErr.Code, "kind", appErr.Kind.String()}
		if appErr.Cause != nil {
			attrs = append(attrs, "error", appErr.Cause)
		}
		if r != nil {
			attrs = append(attrs, "method", r.Method, "path", r.URL.Path)
		}
		log.Error("request failed", attrs...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Body{
		Status:  status,
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}
