// Package apperrors defines the error taxonomy shared by every HTTP boundary.
package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for status mapping.
type Kind int

const (
	KindUnexpected Kind = iota
	KindConfiguration
	KindAuthentication
	KindTenantContext
	KindValidation
	KindNotFound
	KindConflict
	KindRateLimited
	KindForbidden
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindTenantContext:
		return "tenant_context"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindForbidden:
		return "forbidden"
	case KindTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindConfiguration:
		return http.StatusInternalServerError
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindTenantContext, KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindForbidden:
		return http.StatusForbidden
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Error is the application error carried up to the HTTP boundary.
// Message is safe to show to clients; Cause is only logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on Kind and Code so sentinel values work with errors.Is after WithCause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Status returns the HTTP status code for the error.
func (e *Error) Status() int { return e.Kind.Status() }

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Cause = cause
	return &cp
}

// WithMessage returns a copy of e with a different client message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// New builds an error of the given kind.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Constructors used by domain packages.

func Validation(code, message string) *Error { return New(KindValidation, code, message) }
func NotFound(code, message string) *Error   { return New(KindNotFound, code, message) }
func Conflict(code, message string) *Error   { return New(KindConflict, code, message) }
func Forbidden(code, message string) *Error  { return New(KindForbidden, code, message) }

// Unexpected wraps cause with a generic client message.
func Unexpected(cause error) *Error {
	return ErrUnexpected.WithCause(cause)
}

var (
	ErrConfiguration     = New(KindConfiguration, "server_misconfigured", "server is not configured correctly")
	ErrMissingCredential = New(KindAuthentication, "missing_credential", "authentication required")
	ErrInvalidCredential = New(KindAuthentication, "invalid_credential", "invalid or malformed credential")
	ErrExpiredCredential = New(KindAuthentication, "expired_credential", "credential has expired")
	ErrMissingIdentity   = New(KindAuthentication, "missing_identity", "authenticated user required")
	ErrMissingStore      = New(KindTenantContext, "missing_store_context", "store context is required")
	ErrInvalidBody       = New(KindValidation, "invalid_body", "request body is invalid")
	ErrNotFound          = New(KindNotFound, "not_found", "resource not found")
	ErrRateLimited       = New(KindRateLimited, "rate_limited", "too many requests")
	ErrTimeout           = New(KindTimeout, "timeout", "request timed out")
	ErrUnexpected        = New(KindUnexpected, "internal_error", "internal server error")
)

// From converts any error into *Error. Unknown errors become Unexpected,
// except an expired request deadline which becomes ErrTimeout.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnexpected {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout.WithCause(err)
	}
	if appErr != nil {
		return appErr
	}
	return Unexpected(err)
}
