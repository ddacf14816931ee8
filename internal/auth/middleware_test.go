package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/tenancy"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

const testSecret = "secret"

func newTestAuthenticator(secret string, opts ...func(*Options)) func(http.Handler) http.Handler {
	o := Options{
		Tokens: NewTokenManager(secret, "", time.Hour),
		Logger: logging.New("error"),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return Authenticator(o)
}

func signedToken(t *testing.T, secret, merchantID string) string {
	t.Helper()
	token, _, err := NewTokenManager(secret, "", time.Hour).Issue(merchantID)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) apperrors.Body {
	t.Helper()
	var body apperrors.Body
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestAuthenticatorPublicRoutesPassThrough(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/auth/otp/request"},
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/abc"},
		{http.MethodGet, "/api/categories"},
		{http.MethodGet, "/api/brands"},
		{http.MethodPost, "/api/leads"},
		{http.MethodGet, "/health"},
	}
	for _, tc := range cases {
		called := false
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			if _, ok := tenancy.GetMerchantID(r); ok {
				t.Fatalf("public route should not carry a user header")
			}
		})).ServeHTTP(rec, req)
		if !called {
			t.Fatalf("%s %s: expected passthrough", tc.method, tc.path)
		}
	}
}

func TestAuthenticatorPublicRouteMethodMatters(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticatorPrefixBoundary(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/productsadmin", nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run")
	})).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticatorMissingCredentialAPI(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "missing_credential", body.Code)
}

func TestAuthenticatorMissingCredentialPageDistinct(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "sign_in_required", body.Code)
}

func TestAuthenticatorCustomRejectPage(t *testing.T) {
	mw := newTestAuthenticator(testSecret, func(o *Options) {
		o.RejectPage = func(w http.ResponseWriter, r *http.Request, err error) {
			http.Redirect(w, r, "/login", http.StatusFound)
		}
	})
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).ServeHTTP(rec, req)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
}

func TestAuthenticatorMissingSecret(t *testing.T) {
	mw := newTestAuthenticator("")
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, "merchant-1"))
	rec := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a secret")
	})).ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server_misconfigured", decodeBody(t, rec).Code)
}

func TestAuthenticatorValidBearer(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, "merchant-1"))
	rec := httptest.NewRecorder()

	called := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := tenancy.RequireMerchantID(r)
		if err != nil || id != "merchant-1" {
			t.Fatalf("expected merchant-1 header, got %q (%v)", id, err)
		}
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected handler to run with 200, got called=%v code=%d", called, rec.Code)
	}
}

func TestAuthenticatorCookieFallback(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: signedToken(t, testSecret, "merchant-2")})
	rec := httptest.NewRecorder()

	var got string
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = tenancy.GetMerchantID(r)
	})).ServeHTTP(rec, req)
	if got != "merchant-2" {
		t.Fatalf("expected cookie identity merchant-2, got %q", got)
	}
}

func TestAuthenticatorBearerWinsOverCookie(t *testing.T) {
	mw := newTestAuthenticator(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testSecret, "from-header"))
	req.AddCookie(&http.Cookie{Name: "token", Value: signedToken(t, testSecret, "from-cookie")})
	rec := httptest.NewRecorder()

	var got string
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = tenancy.GetMerchantID(r)
	})).ServeHTTP(rec, req)
	if got != "from-header" {
		t.Fatalf("expected bearer identity, got %q", got)
	}
}

func TestAuthenticatorInvalidAndExpired(t *testing.T) {
	expiredMgr := NewTokenManager(testSecret, "", time.Minute)
	expiredMgr.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _, err := expiredMgr.Issue("merchant-1")
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		code  string
	}{
		{"wrong secret", signedToken(t, "wrong", "merchant-1"), "invalid_credential"},
		{"malformed", "not-a-jwt", "invalid_credential"},
		{"expired", expired, "expired_credential"},
	}
	mw := newTestAuthenticator(testSecret)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("handler must not run")
			})).ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tc.code, decodeBody(t, rec).Code)
		})
	}
}

func TestExtractTokenIgnoresNonBearerSchemes(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	req.AddCookie(&http.Cookie{Name: "session", Value: "cookie-token"})
	if got := ExtractToken(req, "session"); got != "cookie-token" {
		t.Fatalf("expected cookie fallback, got %q", got)
	}
}

func TestSessionCookieHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, CookieConfig{Secure: true}, "abc", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec, CookieConfig{Name: "session"})
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
