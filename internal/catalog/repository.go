package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for catalog storage. Every read is scoped
// to one store.
type Repository interface {
	ListProducts(ctx context.Context, storeID string, filter ProductFilter) ([]*Product, error)
	GetProduct(ctx context.Context, storeID, id string) (*Product, error)
	CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error)
	ListCategories(ctx context.Context, storeID string) ([]*Category, error)
	CreateCategory(ctx context.Context, req *CreateNamedRequest) (*Category, error)
	ListBrands(ctx context.Context, storeID string) ([]*Brand, error)
	CreateBrand(ctx context.Context, req *CreateNamedRequest) (*Brand, error)
}

// InMemoryRepository keeps the catalog in process memory.
type InMemoryRepository struct {
	mu         sync.RWMutex
	products   map[string]*Product
	categories map[string]*Category
	brands     map[string]*Brand
	now        func() time.Time
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		products:   make(map[string]*Product),
		categories: make(map[string]*Category),
		brands:     make(map[string]*Brand),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (r *InMemoryRepository) ListProducts(ctx context.Context, storeID string, filter ProductFilter) ([]*Product, error) {
	r.mu.RLock()
	out := make([]*Product, 0)
	for _, p := range r.products {
		if p.StoreID != storeID {
			continue
		}
		if filter.CategoryID != "" && (p.CategoryID == nil || *p.CategoryID != filter.CategoryID) {
			continue
		}
		if filter.BrandID != "" && (p.BrandID == nil || *p.BrandID != filter.BrandID) {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	if filter.Offset >= len(out) {
		return []*Product{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *InMemoryRepository) GetProduct(ctx context.Context, storeID, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok || p.StoreID != storeID {
		return nil, ErrProductNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *InMemoryRepository) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.CategoryID != nil {
		if c, ok := r.categories[*req.CategoryID]; !ok || c.StoreID != req.StoreID {
			return nil, ErrUnknownReference
		}
	}
	if req.BrandID != nil {
		if b, ok := r.brands[*req.BrandID]; !ok || b.StoreID != req.StoreID {
			return nil, ErrUnknownReference
		}
	}
	p := &Product{
		ID:          uuid.New().String(),
		StoreID:     req.StoreID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		CategoryID:  req.CategoryID,
		BrandID:     req.BrandID,
		CreatedAt:   r.now(),
	}
	r.products[p.ID] = p
	copied := *p
	return &copied, nil
}

func (r *InMemoryRepository) ListCategories(ctx context.Context, storeID string) ([]*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Category, 0)
	for _, c := range r.categories {
		if c.StoreID == storeID {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) CreateCategory(ctx context.Context, req *CreateNamedRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.StoreID == req.StoreID && strings.EqualFold(c.Name, req.Name) {
			return nil, ErrNameTaken
		}
	}
	c := &Category{ID: uuid.New().String(), StoreID: req.StoreID, Name: req.Name, CreatedAt: r.now()}
	r.categories[c.ID] = c
	copied := *c
	return &copied, nil
}

func (r *InMemoryRepository) ListBrands(ctx context.Context, storeID string) ([]*Brand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Brand, 0)
	for _, b := range r.brands {
		if b.StoreID == storeID {
			copied := *b
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *InMemoryRepository) CreateBrand(ctx context.Context, req *CreateNamedRequest) (*Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.brands {
		if b.StoreID == req.StoreID && strings.EqualFold(b.Name, req.Name) {
			return nil, ErrNameTaken
		}
	}
	b := &Brand{ID: uuid.New().String(), StoreID: req.StoreID, Name: req.Name, CreatedAt: r.now()}
	r.brands[b.ID] = b
	copied := *b
	return &copied, nil
}
