package team

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wolfman30/storefront-platform/internal/merchants"
	"github.com/wolfman30/storefront-platform/internal/notify"
	"github.com/wolfman30/storefront-platform/internal/stores"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// StoreReader is the slice of the stores repository the service needs.
type StoreReader interface {
	GetByID(ctx context.Context, id string) (*stores.Store, error)
	CanAccess(ctx context.Context, storeID, merchantID string) (bool, error)
}

// InviteMailer delivers invitation links.
type InviteMailer interface {
	SendInvite(ctx context.Context, inv notify.Invite) error
}

// Service coordinates invitations.
type Service struct {
	repo      Repository
	stores    StoreReader
	merchants merchants.Repository
	mailer    InviteMailer
	inviteTTL time.Duration
	baseURL   string
	logger    *logging.Logger
	now       func() time.Time
}

// NewService creates a team service. baseURL prefixes accept links.
func NewService(repo Repository, storeReader StoreReader, merchantRepo merchants.Repository, inviteTTL time.Duration, baseURL string, logger *logging.Logger) *Service {
	if inviteTTL <= 0 {
		inviteTTL = 72 * time.Hour
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		repo:      repo,
		stores:    storeReader,
		merchants: merchantRepo,
		inviteTTL: inviteTTL,
		baseURL:   strings.TrimRight(baseURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// WithMailer makes Invite email the accept link. Delivery failures are logged only.
func (s *Service) WithMailer(m InviteMailer) *Service {
	s.mailer = m
	return s
}

// Invite creates or refreshes a pending invite. Only the owner or an admin may invite.
func (s *Service) Invite(ctx context.Context, storeID, inviterID string, req InviteRequest) (*Invitation, error) {
	store, err := s.requireManager(ctx, storeID, inviterID)
	if err != nil {
		return nil, err
	}
	email, err := merchants.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	member, err := s.repo.UpsertInvite(ctx, &Member{
		StoreID:   storeID,
		Email:     email,
		Role:      role,
		InvitedBy: inviterID,
		InvitedAt: now,
		ExpiresAt: now.Add(s.inviteTTL),
		TokenHash: hashToken(token),
	})
	if err != nil {
		return nil, err
	}
	log := logging.FromContext(ctx, s.logger)
	log.Info("team invite created",
		"store_id", storeID,
		"member_id", member.ID,
		"role", string(role),
	)
	inv := &Invitation{
		Member:    member,
		Token:     token,
		AcceptURL: s.baseURL + "/invites/accept?token=" + url.QueryEscape(token),
	}
	if s.mailer != nil {
		err := s.mailer.SendInvite(ctx, notify.Invite{
			Email:     member.Email,
			StoreName: store.Subdomain,
			Role:      string(member.Role),
			AcceptURL: inv.AcceptURL,
			ExpiresAt: member.ExpiresAt,
		})
		if err != nil {
			log.Warn("team invite email failed", "member_id", member.ID, "error", err)
		}
	}
	return inv, nil
}

// Accept binds the invite to merchantID. The token works once and only for
// the invited address.
func (s *Service) Accept(ctx context.Context, token, merchantID string) (*Member, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	member, err := s.repo.GetByTokenHash(ctx, hashToken(token))
	if err != nil {
		return nil, err
	}
	if member.Status != StatusPending || !s.now().Before(member.ExpiresAt) {
		return nil, ErrInviteNotFound
	}
	merchant, err := s.merchants.GetByID(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	if merchant.Email != member.Email {
		return nil, ErrInviteNotFound
	}
	ok, err := s.stores.CanAccess(ctx, member.StoreID, merchantID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAlreadyMember
	}
	accepted, err := s.repo.Accept(ctx, member.ID, merchantID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx, s.logger).Info("team invite accepted",
		"store_id", accepted.StoreID,
		"member_id", accepted.ID,
		"merchant_id", merchantID,
	)
	return accepted, nil
}

// List returns every invite and member of a store.
func (s *Service) List(ctx context.Context, storeID string) ([]*Member, error) {
	return s.repo.ListByStore(ctx, storeID)
}

// Remove deletes a member or revokes a pending invite.
func (s *Service) Remove(ctx context.Context, storeID, actorID, memberID string) error {
	if _, err := s.requireManager(ctx, storeID, actorID); err != nil {
		return err
	}
	return s.repo.Remove(ctx, storeID, memberID)
}

// CanManage reports whether merchantID owns storeID or is one of its admins.
func (s *Service) CanManage(ctx context.Context, storeID, merchantID string) (bool, error) {
	_, err := s.requireManager(ctx, storeID, merchantID)
	if errors.Is(err, ErrNotPermitted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) requireManager(ctx context.Context, storeID, merchantID string) (*stores.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.MerchantID == merchantID {
		return store, nil
	}
	member, err := s.repo.GetAccepted(ctx, storeID, merchantID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrNotPermitted
		}
		return nil, err
	}
	if member.Role != RoleAdmin {
		return nil, ErrNotPermitted
	}
	return store, nil
}

func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("team: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
