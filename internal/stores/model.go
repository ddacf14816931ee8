package stores

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Store is a tenant of the platform.
type Store struct {
	ID           string          `json:"id"`
	Subdomain    string          `json:"subdomain"`
	CustomDomain *string         `json:"customDomain"`
	MerchantID   string          `json:"merchantId"`
	Settings     json.RawMessage `json:"settings"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Domain returns the custom domain or "" when none is set.
func (s *Store) Domain() string {
	if s.CustomDomain == nil {
		return ""
	}
	return *s.CustomDomain
}

// CreateStoreRequest is the body of POST /api/stores.
type CreateStoreRequest struct {
	MerchantID   string          `json:"-"`
	Subdomain    string          `json:"subdomain"`
	CustomDomain *string         `json:"customDomain,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
}

// UpdateDomainRequest is the body of PUT /api/store/domain. A null domain clears it.
type UpdateDomainRequest struct {
	CustomDomain *string `json:"customDomain"`
}

var (
	subdomainPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	domainPattern    = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,63}$`)
)

// Subdomains the resolver never maps to a store.
var reservedSubdomains = map[string]struct{}{
	"www":   {},
	"api":   {},
	"admin": {},
}

const maxSubdomainLength = 63

// NormalizeSubdomain trims and validates a subdomain label.
func NormalizeSubdomain(raw string) (string, error) {
	sub := strings.TrimSpace(raw)
	if sub == "" || len(sub) > maxSubdomainLength || !subdomainPattern.MatchString(sub) {
		return "", ErrInvalidSubdomain
	}
	if _, reserved := reservedSubdomains[sub]; reserved {
		return "", ErrReservedSubdomain
	}
	return sub, nil
}

// NormalizeDomain lowercases a custom domain and drops a trailing dot.
// Schemes, ports and paths are rejected.
func NormalizeDomain(raw string) (string, error) {
	domain := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), ".")
	if domain == "" || len(domain) > 253 || !domainPattern.MatchString(domain) {
		return "", ErrInvalidDomain
	}
	return domain, nil
}

func normalizeOptionalDomain(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	if strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	domain, err := NormalizeDomain(*raw)
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// NormalizeSettings returns "{}" for empty settings and rejects anything that is not a JSON object.
func NormalizeSettings(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage(`{}`), nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, ErrInvalidSettings
	}
	return json.RawMessage(trimmed), nil
}

// Validate normalizes the request in place.
func (r *CreateStoreRequest) Validate() error {
	if strings.TrimSpace(r.MerchantID) == "" {
		return ErrMissingOwner
	}
	sub, err := NormalizeSubdomain(r.Subdomain)
	if err != nil {
		return err
	}
	r.Subdomain = sub
	domain, err := normalizeOptionalDomain(r.CustomDomain)
	if err != nil {
		return err
	}
	r.CustomDomain = domain
	settings, err := NormalizeSettings(r.Settings)
	if err != nil {
		return err
	}
	r.Settings = settings
	return nil
}
