package stores

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

type fakeMemberships map[string][]string

func (f fakeMemberships) AcceptedStoreIDs(ctx context.Context, merchantID string) ([]string, error) {
	return f[merchantID], nil
}

func strPtr(s string) *string { return &s }

func TestInMemoryRepository_CreateAndLookups(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	store, err := repo.Create(ctx, &CreateStoreRequest{
		MerchantID:   "m1",
		Subdomain:    "acme",
		CustomDomain: strPtr("Shop.Acme.com"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if store.Domain() != "shop.acme.com" {
		t.Fatalf("expected normalized domain, got %q", store.Domain())
	}

	id, err := repo.StoreIDByCustomDomain(ctx, "shop.acme.com")
	if err != nil || id != store.ID {
		t.Fatalf("expected domain lookup to match, got %q (%v)", id, err)
	}
	id, err = repo.StoreIDBySubdomain(ctx, "acme")
	if err != nil || id != store.ID {
		t.Fatalf("expected subdomain lookup to match, got %q (%v)", id, err)
	}
	id, err = repo.StoreIDBySubdomain(ctx, "ACME")
	if err != nil || id != "" {
		t.Fatalf("expected case-sensitive miss, got %q (%v)", id, err)
	}

	if _, err := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m2", Subdomain: "acme"}); !errors.Is(err, ErrSubdomainTaken) {
		t.Fatalf("expected subdomain conflict, got %v", err)
	}
	if _, err := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m2", Subdomain: "other", CustomDomain: strPtr("shop.acme.com")}); !errors.Is(err, ErrDomainTaken) {
		t.Fatalf("expected domain conflict, got %v", err)
	}
}

func TestInMemoryRepository_Updates(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	a, _ := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m1", Subdomain: "a", CustomDomain: strPtr("a.example.com")})
	b, _ := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m1", Subdomain: "b"})

	if _, err := repo.UpdateCustomDomain(ctx, b.ID, strPtr("a.example.com")); !errors.Is(err, ErrDomainTaken) {
		t.Fatalf("expected conflict, got %v", err)
	}
	updated, err := repo.UpdateCustomDomain(ctx, a.ID, nil)
	if err != nil || updated.CustomDomain != nil {
		t.Fatalf("expected domain cleared, got %+v (%v)", updated, err)
	}
	if id, _ := repo.StoreIDByCustomDomain(ctx, "a.example.com"); id != "" {
		t.Fatalf("expected cleared domain to stop resolving, got %q", id)
	}

	updated, err = repo.UpdateSettings(ctx, a.ID, json.RawMessage(`{"currency":"EUR"}`))
	if err != nil || string(updated.Settings) != `{"currency":"EUR"}` {
		t.Fatalf("expected settings updated, got %s (%v)", updated.Settings, err)
	}
	if _, err := repo.UpdateSettings(ctx, "missing", nil); !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInMemoryRepository_Visibility(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository().WithMemberships(fakeMemberships{"m2": nil, "m3": {}})
	owned, _ := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m1", Subdomain: "owned"})
	other, _ := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m9", Subdomain: "joined"})
	repo.WithMemberships(fakeMemberships{"m1": {other.ID}})

	list, err := repo.ListVisibleToMerchant(ctx, "m1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected owned and joined store, got %d", len(list))
	}

	for _, tc := range []struct {
		store, merchant string
		want            bool
	}{
		{owned.ID, "m1", true},
		{other.ID, "m1", true},
		{other.ID, "m9", true},
		{owned.ID, "m9", false},
		{"missing", "m1", false},
	} {
		got, err := repo.CanAccess(ctx, tc.store, tc.merchant)
		if err != nil || got != tc.want {
			t.Fatalf("CanAccess(%s,%s) = %v (%v), want %v", tc.store, tc.merchant, got, err, tc.want)
		}
	}
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	s, _ := repo.Create(ctx, &CreateStoreRequest{MerchantID: "m1", Subdomain: "acme"})
	s.Subdomain = "mutated"
	got, _ := repo.GetByID(ctx, s.ID)
	if got.Subdomain != "acme" {
		t.Fatalf("expected stored value untouched, got %q", got.Subdomain)
	}
}
