package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

// Claims carried by a merchant session token. Store context is never encoded here.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 merchant tokens.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager builds a manager for the given secret. An empty secret yields a
// manager whose every call fails with apperrors.ErrConfiguration.
func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &TokenManager{
		secret: []byte(strings.TrimSpace(secret)),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Configured reports whether a signing secret is present.
func (m *TokenManager) Configured() bool {
	return m != nil && len(m.secret) > 0
}

// Issue signs a token for merchantID and returns it with its expiry.
func (m *TokenManager) Issue(merchantID string) (string, time.Time, error) {
	if !m.Configured() {
		return "", time.Time{}, apperrors.ErrConfiguration.WithCause(errors.New("jwt secret not configured"))
	}
	if merchantID == "" {
		return "", time.Time{}, apperrors.ErrMissingIdentity
	}
	now := m.now()
	expiresAt := now.Add(m.ttl)
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   merchantID,
		Issuer:    m.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, apperrors.Unexpected(err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, expiry and issuer, returning the subject.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	if !m.Configured() {
		return "", apperrors.ErrConfiguration.WithCause(errors.New("jwt secret not configured"))
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperrors.ErrExpiredCredential.WithCause(err)
		}
		return "", apperrors.ErrInvalidCredential.WithCause(err)
	}
	if !token.Valid || claims.Subject == "" {
		return "", apperrors.ErrInvalidCredential
	}
	return claims.Subject, nil
}
