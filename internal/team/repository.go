package team

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for membership storage
type Repository interface {
	// UpsertInvite creates a pending invite or refreshes a pending one for the
	// same store and email. It fails with ErrAlreadyMember when that email has
	// already accepted.
	UpsertInvite(ctx context.Context, m *Member) (*Member, error)
	GetByTokenHash(ctx context.Context, hash string) (*Member, error)
	// Accept moves a pending invite to accepted and burns its token.
	Accept(ctx context.Context, id, merchantID string, at time.Time) (*Member, error)
	ListByStore(ctx context.Context, storeID string) ([]*Member, error)
	GetAccepted(ctx context.Context, storeID, merchantID string) (*Member, error)
	Remove(ctx context.Context, storeID, memberID string) error
	AcceptedStoreIDs(ctx context.Context, merchantID string) ([]string, error)
}

// InMemoryRepository keeps memberships in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	members map[string]*Member
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{members: make(map[string]*Member)}
}

func (r *InMemoryRepository) UpsertInvite(ctx context.Context, m *Member) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.members {
		if existing.StoreID != m.StoreID || existing.Email != m.Email {
			continue
		}
		if existing.Status == StatusAccepted {
			return nil, ErrAlreadyMember
		}
		existing.Role = m.Role
		existing.TokenHash = m.TokenHash
		existing.InvitedBy = m.InvitedBy
		existing.InvitedAt = m.InvitedAt
		existing.ExpiresAt = m.ExpiresAt
		return copyMember(existing), nil
	}
	stored := copyMember(m)
	stored.ID = uuid.New().String()
	stored.Status = StatusPending
	r.members[stored.ID] = stored
	return copyMember(stored), nil
}

func (r *InMemoryRepository) GetByTokenHash(ctx context.Context, hash string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.TokenHash != "" && m.TokenHash == hash {
			return copyMember(m), nil
		}
	}
	return nil, ErrInviteNotFound
}

func (r *InMemoryRepository) Accept(ctx context.Context, id, merchantID string, at time.Time) (*Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok || m.Status != StatusPending {
		return nil, ErrInviteNotFound
	}
	m.Status = StatusAccepted
	m.MerchantID = &merchantID
	m.AcceptedAt = &at
	m.TokenHash = ""
	return copyMember(m), nil
}

func (r *InMemoryRepository) ListByStore(ctx context.Context, storeID string) ([]*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Member
	for _, m := range r.members {
		if m.StoreID == storeID {
			out = append(out, copyMember(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InvitedAt.Before(out[j].InvitedAt) })
	return out, nil
}

func (r *InMemoryRepository) GetAccepted(ctx context.Context, storeID, merchantID string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.StoreID == storeID && m.Status == StatusAccepted && m.MerchantID != nil && *m.MerchantID == merchantID {
			return copyMember(m), nil
		}
	}
	return nil, ErrMemberNotFound
}

func (r *InMemoryRepository) Remove(ctx context.Context, storeID, memberID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberID]
	if !ok || m.StoreID != storeID {
		return ErrMemberNotFound
	}
	delete(r.members, memberID)
	return nil
}

func (r *InMemoryRepository) AcceptedStoreIDs(ctx context.Context, merchantID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []string
	for _, m := range r.members {
		if m.Status == StatusAccepted && m.MerchantID != nil && *m.MerchantID == merchantID {
			out = append(out, m.StoreID)
		}
	}
	return out, nil
}

func copyMember(m *Member) *Member {
	cp := *m
	if m.MerchantID != nil {
		id := *m.MerchantID
		cp.MerchantID = &id
	}
	if m.AcceptedAt != nil {
		at := *m.AcceptedAt
		cp.AcceptedAt = &at
	}
	return &cp
}
