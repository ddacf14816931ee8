package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/storefront-platform/internal/database"
)

const productColumns = `id, store_id, name, description, price_cents, currency, category_id, brand_id, created_at`

// PostgresRepository stores the catalog in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB accepts any database.DB, used by tests.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListProducts(ctx context.Context, storeID string, filter ProductFilter) ([]*Product, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE store_id = $1
		  AND ($2::text = '' OR category_id::text = $2)
		  AND ($3::text = '' OR brand_id::text = $3)
		ORDER BY name, id
		LIMIT $4 OFFSET $5
	`
	rows, err := r.db.Query(ctx, query, storeID, filter.CategoryID, filter.BrandID, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("catalog: list products failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan product failed: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list products failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetProduct(ctx context.Context, storeID, id string) (*Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrProductNotFound
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND store_id = $2`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id, storeID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("catalog: select product failed: %w", err)
	}
	return p, nil
}

// CreateProduct inserts only when the referenced category and brand belong
// to the same store.
func (r *PostgresRepository) CreateProduct(ctx context.Context, req *CreateProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO products (id, store_id, name, description, price_cents, currency, category_id, brand_id)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE ($7::uuid IS NULL OR EXISTS (SELECT 1 FROM categories WHERE id = $7 AND store_id = $2))
		  AND ($8::uuid IS NULL OR EXISTS (SELECT 1 FROM brands WHERE id = $8 AND store_id = $2))
		RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRow(ctx, query,
		uuid.New().String(),
		req.StoreID,
		req.Name,
		req.Description,
		req.PriceCents,
		req.Currency,
		req.CategoryID,
		req.BrandID,
	))
	if err != nil {
		if database.IsNoRows(err) || database.IsForeignKeyViolation(err) {
			return nil, ErrUnknownReference
		}
		return nil, fmt.Errorf("catalog: insert product failed: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) ListCategories(ctx context.Context, storeID string) ([]*Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, store_id, name, created_at FROM categories WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list categories failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Category, 0)
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan category failed: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, req *CreateNamedRequest) (*Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var c Category
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (id, store_id, name) VALUES ($1, $2, $3)
		RETURNING id, store_id, name, created_at`,
		uuid.New().String(), req.StoreID, req.Name,
	).Scan(&c.ID, &c.StoreID, &c.Name, &c.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("catalog: insert category failed: %w", err)
	}
	return &c, nil
}

func (r *PostgresRepository) ListBrands(ctx context.Context, storeID string) ([]*Brand, error) {
	rows, err := r.db.Query(ctx, `SELECT id, store_id, name, created_at FROM brands WHERE store_id = $1 ORDER BY name`, storeID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list brands failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Brand, 0)
	for rows.Next() {
		var b Brand
		if err := rows.Scan(&b.ID, &b.StoreID, &b.Name, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan brand failed: %w", err)
		}
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateBrand(ctx context.Context, req *CreateNamedRequest) (*Brand, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var b Brand
	err := r.db.QueryRow(ctx, `
		INSERT INTO brands (id, store_id, name) VALUES ($1, $2, $3)
		RETURNING id, store_id, name, created_at`,
		uuid.New().String(), req.StoreID, req.Name,
	).Scan(&b.ID, &b.StoreID, &b.Name, &b.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err, "") {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("catalog: insert brand failed: %w", err)
	}
	return &b, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	if err := row.Scan(
		&p.ID,
		&p.StoreID,
		&p.Name,
		&p.Description,
		&p.PriceCents,
		&p.Currency,
		&p.CategoryID,
		&p.BrandID,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
