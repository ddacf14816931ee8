// Package catalog serves the products, categories and brands of a store.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
)

const defaultCurrency = "USD"

// Product is a sellable item of a store.
type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	CategoryID  *string   `json:"categoryId"`
	BrandID     *string   `json:"brandId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Category groups products.
type Category struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Brand is the maker of a product.
type Brand struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"storeId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateProductRequest is the body of POST /api/products.
type CreateProductRequest struct {
	StoreID     string  `json:"-"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	PriceCents  int64   `json:"priceCents"`
	Currency    string  `json:"currency"`
	CategoryID  *string `json:"categoryId"`
	BrandID     *string `json:"brandId"`
}

// Validate normalizes the request in place.
func (r *CreateProductRequest) Validate() error {
	if strings.TrimSpace(r.StoreID) == "" {
		return apperrors.ErrMissingStore
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	if r.Name == "" {
		return ErrInvalidName
	}
	if r.PriceCents < 0 {
		return ErrInvalidPrice
	}
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	if len(r.Currency) != 3 || strings.Trim(r.Currency, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") != "" {
		return ErrInvalidCurrency
	}
	var err error
	if r.CategoryID, err = normalizeRef(r.CategoryID); err != nil {
		return err
	}
	if r.BrandID, err = normalizeRef(r.BrandID); err != nil {
		return err
	}
	return nil
}

// CreateNamedRequest is the body for creating a category or brand.
type CreateNamedRequest struct {
	StoreID string `json:"-"`
	Name    string `json:"name"`
}

// Validate normalizes the request in place.
func (r *CreateNamedRequest) Validate() error {
	if strings.TrimSpace(r.StoreID) == "" {
		return apperrors.ErrMissingStore
	}
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return ErrInvalidName
	}
	return nil
}

// ProductFilter narrows ListProducts.
type ProductFilter struct {
	CategoryID string
	BrandID    string
	Limit      int
	Offset     int
}

func normalizeRef(raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, nil
	}
	if _, err := uuid.Parse(v); err != nil {
		return nil, ErrUnknownReference
	}
	return &v, nil
}
