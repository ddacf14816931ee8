package stores

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/storefront-platform/internal/database"
)

const (
	subdomainConstraint = "stores_subdomain_key"
	domainConstraint    = "stores_custom_domain_key"
)

const storeColumns = `id, subdomain, custom_domain, merchant_id, settings, created_at, updated_at`

// PostgresRepository stores tenants in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("stores: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB accepts any pgx-compatible handle (used by tests).
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, req *CreateStoreRequest) (*Store, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO stores (id, subdomain, custom_domain, merchant_id, settings)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + storeColumns
	store, err := scanStore(r.db.QueryRow(ctx, query,
		uuid.New().String(),
		req.Subdomain,
		req.CustomDomain,
		req.MerchantID,
		req.Settings,
	))
	if err != nil {
		return nil, mapWriteError("insert", err)
	}
	return store, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Store, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrStoreNotFound
	}
	query := `SELECT ` + storeColumns + ` FROM stores WHERE id = $1`
	store, err := scanStore(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("stores: select failed: %w", err)
	}
	return store, nil
}

func (r *PostgresRepository) UpdateSettings(ctx context.Context, id string, settings json.RawMessage) (*Store, error) {
	settings, err := NormalizeSettings(settings)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrStoreNotFound
	}
	query := `
		UPDATE stores SET settings = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + storeColumns
	store, err := scanStore(r.db.QueryRow(ctx, query, id, settings))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrStoreNotFound
		}
		return nil, fmt.Errorf("stores: update settings failed: %w", err)
	}
	return store, nil
}

func (r *PostgresRepository) UpdateCustomDomain(ctx context.Context, id string, domain *string) (*Store, error) {
	domain, err := normalizeOptionalDomain(domain)
	if err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrStoreNotFound
	}
	query := `
		UPDATE stores SET custom_domain = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + storeColumns
	store, err := scanStore(r.db.QueryRow(ctx, query, id, domain))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrStoreNotFound
		}
		return nil, mapWriteError("update domain", err)
	}
	return store, nil
}

func (r *PostgresRepository) ListVisibleToMerchant(ctx context.Context, merchantID string) ([]*Store, error) {
	query := `
		SELECT ` + storeColumns + `
		FROM stores s
		WHERE s.merchant_id = $1
		   OR EXISTS (
			SELECT 1 FROM team_members tm
			WHERE tm.store_id = s.id AND tm.merchant_id = $1 AND tm.status = 'accepted'
		   )
		ORDER BY s.created_at ASC
	`
	rows, err := r.db.Query(ctx, query, merchantID)
	if err != nil {
		return nil, fmt.Errorf("stores: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("stores: scan failed: %w", err)
		}
		out = append(out, store)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stores: list failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) CanAccess(ctx context.Context, storeID, merchantID string) (bool, error) {
	if _, err := uuid.Parse(storeID); err != nil {
		return false, nil
	}
	query := `
		SELECT EXISTS (
			SELECT 1 FROM stores s
			WHERE s.id = $1 AND (
				s.merchant_id = $2
				OR EXISTS (
					SELECT 1 FROM team_members tm
					WHERE tm.store_id = s.id AND tm.merchant_id = $2 AND tm.status = 'accepted'
				)
			)
		)
	`
	var ok bool
	if err := r.db.QueryRow(ctx, query, storeID, merchantID).Scan(&ok); err != nil {
		return false, fmt.Errorf("stores: access check failed: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) StoreIDByCustomDomain(ctx context.Context, domain string) (string, error) {
	return r.lookupID(ctx, `SELECT id FROM stores WHERE custom_domain = $1`, domain)
}

func (r *PostgresRepository) StoreIDBySubdomain(ctx context.Context, subdomain string) (string, error) {
	return r.lookupID(ctx, `SELECT id FROM stores WHERE subdomain = $1`, subdomain)
}

func (r *PostgresRepository) lookupID(ctx context.Context, query, value string) (string, error) {
	var id string
	if err := r.db.QueryRow(ctx, query, value).Scan(&id); err != nil {
		if database.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("stores: lookup failed: %w", err)
	}
	return id, nil
}

func scanStore(row pgx.Row) (*Store, error) {
	var s Store
	var settings []byte
	if err := row.Scan(
		&s.ID,
		&s.Subdomain,
		&s.CustomDomain,
		&s.MerchantID,
		&settings,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(settings) == 0 {
		settings = []byte(`{}`)
	}
	s.Settings = json.RawMessage(settings)
	return &s, nil
}

func mapWriteError(op string, err error) error {
	switch {
	case database.IsUniqueViolation(err, subdomainConstraint):
		return ErrSubdomainTaken.WithCause(err)
	case database.IsUniqueViolation(err, domainConstraint):
		return ErrDomainTaken.WithCause(err)
	default:
		return fmt.Errorf("stores: %s failed: %w", op, err)
	}
}
