// Package otp implements passwordless merchant login with one-time email codes.
package otp

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/auth"
	"github.com/wolfman30/storefront-platform/internal/merchants"
	"github.com/wolfman30/storefront-platform/internal/observability/metrics"
	"github.com/wolfman30/storefront-platform/internal/ratelimit"
	"github.com/wolfman30/storefront-platform/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("storefront/otp")

// ErrInvalidCode covers wrong, expired, exhausted and unknown codes alike.
var ErrInvalidCode = apperrors.New(apperrors.KindAuthentication, "invalid_code", "code is invalid or has expired")

// Config tunes code issuance.
type Config struct {
	CodeLength  int
	TTL         time.Duration
	MaxAttempts int
}

func (c Config) withDefaults() Config {
	if c.CodeLength == 0 {
		c.CodeLength = 6
	}
	if c.TTL <= 0 {
		c.TTL = 10 * time.Minute
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	return c
}

// Session is the result of a successful verification.
type Session struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Merchant  *merchants.Merchant `json:"merchant"`
}

// Service issues and verifies login codes.
type Service struct {
	cfg       Config
	store     Store
	sender    Sender
	limiter   ratelimit.Limiter
	merchants merchants.Repository
	tokens    *auth.TokenManager
	metrics   *metrics.OTPMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// Deps groups the collaborators of Service. Limiter and Metrics may be nil.
type Deps struct {
	Store     Store
	Sender    Sender
	Limiter   ratelimit.Limiter
	Merchants merchants.Repository
	Tokens    *auth.TokenManager
	Metrics   *metrics.OTPMetrics
	Logger    *logging.Logger
}

// NewService wires the login flow.
func NewService(cfg Config, deps Deps) *Service {
	if deps.Store == nil || deps.Sender == nil || deps.Merchants == nil || deps.Tokens == nil {
		panic("otp: store, sender, merchants and tokens are required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.Default()
	}
	return &Service{
		cfg:       cfg.withDefaults(),
		store:     deps.Store,
		sender:    deps.Sender,
		limiter:   deps.Limiter,
		merchants: deps.Merchants,
		tokens:    deps.Tokens,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// Request generates a code for email and hands it to the sender.
// A newer request replaces any pending code.
func (s *Service) Request(ctx context.Context, email, clientIP string) error {
	ctx, span := tracer.Start(ctx, "otp.request")
	defer span.End()

	email, err := merchants.NormalizeEmail(email)
	if err != nil {
		s.metrics.ObserveRequested("invalid")
		return err
	}
	if err := s.checkRate(ctx, "email:"+email, "ip:"+clientIP); err != nil {
		s.metrics.ObserveRequested("rate_limited")
		return err
	}

	code, err := GenerateCode(s.cfg.CodeLength)
	if err != nil {
		return apperrors.Unexpected(err)
	}
	entry := Entry{
		Hash:         hashCode(email, code),
		AttemptsLeft: s.cfg.MaxAttempts,
		ExpiresAt:    s.now().Add(s.cfg.TTL),
	}
	if err := s.store.Put(ctx, email, entry); err != nil {
		span.SetStatus(codes.Error, "store failed")
		return apperrors.Unexpected(err)
	}
	if err := s.sender.SendCode(ctx, email, code); err != nil {
		_ = s.store.Delete(ctx, email)
		span.SetStatus(codes.Error, "send failed")
		s.metrics.ObserveRequested("send_failed")
		return apperrors.Unexpected(err)
	}
	s.metrics.ObserveRequested("sent")
	return nil
}

// Verify consumes a matching code, upserts the merchant and issues a token.
// Every guess spends one attempt up front; the code is discarded when none remain.
func (s *Service) Verify(ctx context.Context, email, code string) (*Session, error) {
	ctx, span := tracer.Start(ctx, "otp.verify")
	defer span.End()

	email, err := merchants.NormalizeEmail(email)
	if err != nil {
		s.metrics.ObserveVerified("invalid")
		return nil, err
	}
	if err := s.checkRate(ctx, "verify:"+email); err != nil {
		s.metrics.ObserveVerified("rate_limited")
		return nil, err
	}
	entry, ok, err := s.store.Reserve(ctx, email)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	if !ok || !s.now().Before(entry.ExpiresAt) {
		s.metrics.ObserveVerified("missing")
		return nil, ErrInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(hashCode(email, code)), []byte(entry.Hash)) != 1 {
		if entry.AttemptsLeft == 0 {
			if err := s.store.Delete(ctx, email); err != nil {
				return nil, apperrors.Unexpected(err)
			}
		}
		s.metrics.ObserveVerified("mismatch")
		return nil, ErrInvalidCode
	}

	if err := s.store.Delete(ctx, email); err != nil {
		return nil, apperrors.Unexpected(err)
	}
	merchant, err := s.merchants.GetOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.tokens.Issue(merchant.ID)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveVerified("ok")
	logging.FromContext(ctx, s.logger).Info("merchant signed in", "merchant_id", merchant.ID)
	return &Session{Token: token, ExpiresAt: expiresAt, Merchant: merchant}, nil
}

func (s *Service) checkRate(ctx context.Context, keys ...string) error {
	if s.limiter == nil {
		return nil
	}
	for _, key := range keys {
		res, err := s.limiter.Allow(ctx, "otp:"+key)
		if err != nil {
			logging.FromContext(ctx, s.logger).Warn("otp rate limiter unavailable", "error", err)
			return nil
		}
		if !res.Allowed {
			return apperrors.ErrRateLimited
		}
	}
	return nil
}
