package stores

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for store storage
type Repository interface {
	Create(ctx context.Context, req *CreateStoreRequest) (*Store, error)
	GetByID(ctx context.Context, id string) (*Store, error)
	UpdateSettings(ctx context.Context, id string, settings json.RawMessage) (*Store, error)
	UpdateCustomDomain(ctx context.Context, id string, domain *string) (*Store, error)
	ListVisibleToMerchant(ctx context.Context, merchantID string) ([]*Store, error)
	CanAccess(ctx context.Context, storeID, merchantID string) (bool, error)

	// Point lookups used by host resolution. "" means no match.
	StoreIDByCustomDomain(ctx context.Context, domain string) (string, error)
	StoreIDBySubdomain(ctx context.Context, subdomain string) (string, error)
}

// Memberships reports the stores a merchant joined through an accepted invite.
type Memberships interface {
	AcceptedStoreIDs(ctx context.Context, merchantID string) ([]string, error)
}

// InMemoryRepository keeps stores in process memory.
type InMemoryRepository struct {
	mu          sync.RWMutex
	stores      map[string]*Store
	memberships Memberships
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{stores: make(map[string]*Store)}
}

// WithMemberships makes accepted team memberships count toward visibility.
func (r *InMemoryRepository) WithMemberships(m Memberships) *InMemoryRepository {
	r.mu.Lock()
	r.memberships = m
	r.mu.Unlock()
	return r
}

func (r *InMemoryRepository) Create(ctx context.Context, req *CreateStoreRequest) (*Store, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.stores {
		if s.Subdomain == req.Subdomain {
			return nil, ErrSubdomainTaken
		}
		if req.CustomDomain != nil && s.CustomDomain != nil && *s.CustomDomain == *req.CustomDomain {
			return nil, ErrDomainTaken
		}
	}

	now := time.Now().UTC()
	store := &Store{
		ID:           uuid.New().String(),
		Subdomain:    req.Subdomain,
		CustomDomain: req.CustomDomain,
		MerchantID:   req.MerchantID,
		Settings:     req.Settings,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.stores[store.ID] = store
	return copyStore(store), nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return copyStore(s), nil
}

func (r *InMemoryRepository) UpdateSettings(ctx context.Context, id string, settings json.RawMessage) (*Store, error) {
	settings, err := NormalizeSettings(settings)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, ErrStoreNotFound
	}
	s.Settings = settings
	s.UpdatedAt = time.Now().UTC()
	return copyStore(s), nil
}

func (r *InMemoryRepository) UpdateCustomDomain(ctx context.Context, id string, domain *string) (*Store, error) {
	domain, err := normalizeOptionalDomain(domain)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[id]
	if !ok {
		return nil, ErrStoreNotFound
	}
	if domain != nil {
		for otherID, other := range r.stores {
			if otherID != id && other.CustomDomain != nil && *other.CustomDomain == *domain {
				return nil, ErrDomainTaken
			}
		}
	}
	s.CustomDomain = domain
	s.UpdatedAt = time.Now().UTC()
	return copyStore(s), nil
}

func (r *InMemoryRepository) ListVisibleToMerchant(ctx context.Context, merchantID string) ([]*Store, error) {
	joined, err := r.joinedStores(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Store
	for id, s := range r.stores {
		if _, ok := joined[id]; ok || s.MerchantID == merchantID {
			out = append(out, copyStore(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *InMemoryRepository) CanAccess(ctx context.Context, storeID, merchantID string) (bool, error) {
	r.mu.RLock()
	s, ok := r.stores[storeID]
	r.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if s.MerchantID == merchantID {
		return true, nil
	}
	joined, err := r.joinedStores(ctx, merchantID)
	if err != nil {
		return false, err
	}
	_, member := joined[storeID]
	return member, nil
}

func (r *InMemoryRepository) StoreIDByCustomDomain(ctx context.Context, domain string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stores {
		if s.CustomDomain != nil && *s.CustomDomain == domain {
			return s.ID, nil
		}
	}
	return "", nil
}

func (r *InMemoryRepository) StoreIDBySubdomain(ctx context.Context, subdomain string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stores {
		if s.Subdomain == subdomain {
			return s.ID, nil
		}
	}
	return "", nil
}

func (r *InMemoryRepository) joinedStores(ctx context.Context, merchantID string) (map[string]struct{}, error) {
	r.mu.RLock()
	m := r.memberships
	r.mu.RUnlock()
	out := map[string]struct{}{}
	if m == nil {
		return out, nil
	}
	ids, err := m.AcceptedStoreIDs(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}

func copyStore(s *Store) *Store {
	cp := *s
	if s.CustomDomain != nil {
		d := *s.CustomDomain
		cp.CustomDomain = &d
	}
	cp.Settings = append(json.RawMessage(nil), s.Settings...)
	return &cp
}
