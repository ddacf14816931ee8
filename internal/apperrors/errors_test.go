package apperrors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func TestKindStatusMapping(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindConfiguration, http.StatusInternalServerError},
		{KindAuthentication, http.StatusUnauthorized},
		{KindTenantContext, http.StatusBadRequest},
		{KindValidation, http.StatusBadRequest},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindRateLimited, http.StatusTooManyRequests},
		{KindForbidden, http.StatusForbidden},
		{KindTimeout, http.StatusGatewayTimeout},
		{KindUnexpected, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Status())
		})
	}
}

func TestFromWrapsForeignErrors(t *testing.T) {
	cause := errors.New("connection refused")
	appErr := From(cause)

	require.NotNil(t, appErr)
	assert.Equal(t, KindUnexpected, appErr.Kind)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}

func TestFromKeepsWrappedAppErrors(t *testing.T) {
	wrapped := fmt.Errorf("stores: %w", ErrNotFound)
	assert.Equal(t, KindNotFound, From(wrapped).Kind)
	assert.Equal(t, KindUnexpected, From(errors.New("x")).Kind)
}

func TestFromMapsExpiredDeadline(t *testing.T) {
	for _, err := range []error{
		context.DeadlineExceeded,
		fmt.Errorf("lookup: %w", context.DeadlineExceeded),
		Unexpected(context.DeadlineExceeded),
	} {
		appErr := From(err)
		assert.Equal(t, KindTimeout, appErr.Kind, err.Error())
		assert.Equal(t, http.StatusGatewayTimeout, appErr.Status())
	}
	assert.Equal(t, KindUnexpected, From(Unexpected(context.Canceled)).Kind)
	assert.Equal(t, KindNotFound, From(ErrNotFound.WithCause(context.DeadlineExceeded)).Kind)
}

func TestWithCauseKeepsIdentity(t *testing.T) {
	err := ErrInvalidCredential.WithCause(errors.New("signature is invalid"))
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.NotErrorIs(t, err, ErrExpiredCredential)
	assert.Nil(t, ErrInvalidCredential.Cause, "sentinel must not be mutated")
}

func TestWriteHidesInternalDetails(t *testing.T) {
	var logs bytes.Buffer
	logger := logging.NewWithOptions(logging.Options{Output: &logs})

	req := httptest.NewRequest(http.MethodGet, "/api/store", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, logger, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password authentication")

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 500, body.Status)
	assert.Equal(t, "internal_error", body.Code)
	assert.True(t, strings.Contains(logs.String(), "password authentication"), "cause should be logged server side")
}

func TestWriteClientErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, nil, logging.Default(), Conflict("subdomain_taken", "subdomain is already taken"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body Body
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, Body{Status: 409, Code: "subdomain_taken", Message: "subdomain is already taken"}, body)
}
