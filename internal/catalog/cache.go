package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// CachedRepository serves storefront reads from a short-lived cache and
// drops a store's entries whenever that store's catalog changes. Only the
// first page of a product listing is cached.
type CachedRepository struct {
	Repository
	cache *gocache.Cache
}

// NewCachedRepository wraps next with a cache whose entries live for ttl.
func NewCachedRepository(next Repository, ttl time.Duration) *CachedRepository {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedRepository{
		Repository: next,
		cache:      gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedRepository) ListProducts(ctx context.Context, storeID string, filter ProductFilter) ([]*Product, error) {
	if filter.Offset > 0 {
		return c.Repository.ListProducts(ctx, storeID, filter)
	}
	key := fmt.Sprintf("%s|products|%s|%s|%d", storeID, filter.CategoryID, filter.BrandID, filter.Limit)
	if v, ok := c.cache.Get(key); ok {
		return v.([]*Product), nil
	}
	out, err := c.Repository.ListProducts(ctx, storeID, filter)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

func (c *CachedRepository) ListCategories(ctx context.Context, storeID string) ([]*Category, error) {
	key := storeID + "|categories"
	if v, ok := c.cache.Get(key); ok {
		return v.([]*Category), nil
	}
	out, err := c.Repository.ListCategories(ctx, storeID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

func (c *CachedRepository) ListBrands(ctx context.Context, storeID string) ([]*Brand, error) {
	key := storeID + "|brands"
	if v, ok := c.cache.Get(key); ok {
		return v.([]*Brand), nil
	}
	out, err := c.Repository.ListBrands(ctx, storeID)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, out)
	return out, nil
}

func (c *CachedRepository) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	p, err := c.Repository.CreateProduct(ctx, req)
	if err == nil {
		c.invalidate(req.StoreID)
	}
	return p, err
}

func (c *CachedRepository) CreateCategory(ctx context.Context, req *CreateNamedRequest) (*Category, error) {
	cat, err := c.Repository.CreateCategory(ctx, req)
	if err == nil {
		c.invalidate(req.StoreID)
	}
	return cat, err
}

func (c *CachedRepository) CreateBrand(ctx context.Context, req *CreateNamedRequest) (*Brand, error) {
	b, err := c.Repository.CreateBrand(ctx, req)
	if err == nil {
		c.invalidate(req.StoreID)
	}
	return b, err
}

func (c *CachedRepository) invalidate(storeID string) {
	prefix := storeID + "|"
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}
