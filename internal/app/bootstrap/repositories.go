package bootstrap

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/storefront-platform/internal/catalog"
	"github.com/wolfman30/storefront-platform/internal/leads"
	"github.com/wolfman30/storefront-platform/internal/merchants"
	"github.com/wolfman30/storefront-platform/internal/stores"
	"github.com/wolfman30/storefront-platform/internal/team"
)

// Repositories bundles every persistence backend the API uses.
type Repositories struct {
	Merchants merchants.Repository
	Stores    stores.Repository
	Team      team.Repository
	Leads     leads.Repository
	Catalog   catalog.Repository
	Durable   bool
}

// BuildRepositories returns Postgres repositories when pool is set and
// in-memory ones otherwise. Catalog reads are cached for catalogTTL.
func BuildRepositories(pool *pgxpool.Pool, catalogTTL time.Duration) Repositories {
	if pool == nil {
		teamRepo := team.NewInMemoryRepository()
		return Repositories{
			Merchants: merchants.NewInMemoryRepository(),
			Stores:    stores.NewInMemoryRepository().WithMemberships(teamRepo),
			Team:      teamRepo,
			Leads:     leads.NewInMemoryRepository(),
			Catalog:   catalog.NewCachedRepository(catalog.NewInMemoryRepository(), catalogTTL),
		}
	}
	return Repositories{
		Merchants: merchants.NewPostgresRepository(pool),
		Stores:    stores.NewPostgresRepository(pool),
		Team:      team.NewPostgresRepository(pool),
		Leads:     leads.NewPostgresRepository(pool),
		Catalog:   catalog.NewCachedRepository(catalog.NewPostgresRepository(pool), catalogTTL),
		Durable:   true,
	}
}
