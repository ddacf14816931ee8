package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	GetByID(ctx context.Context, storeID, id string) (*Lead, error)
	ListByStore(ctx context.Context, storeID string, filter ListLeadsFilter) ([]*Lead, error)
}

// InMemoryRepository is an implementation of Repository using in-memory storage
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads: make(map[string]*Lead),
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, time.Now().UTC())

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.mu.Unlock()

	copied := *lead
	return &copied, nil
}

// GetByID retrieves a lead scoped to the store
func (r *InMemoryRepository) GetByID(ctx context.Context, storeID, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok || lead.StoreID != storeID {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

// ListByStore returns the store's leads, newest first.
func (r *InMemoryRepository) ListByStore(ctx context.Context, storeID string, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	out := make([]*Lead, 0)
	for _, lead := range r.leads {
		if lead.StoreID != storeID {
			continue
		}
		if filter.Bucket != "" && lead.Bucket != filter.Bucket {
			continue
		}
		copied := *lead
		out = append(out, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []*Lead{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}
