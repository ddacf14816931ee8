package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/storefront-platform/internal/database"
)

const leadColumns = `id, store_id, name, email, phone, message, source, score, bucket, created_at`

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB accepts any database.DB, used by tests.
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	lead := newLead(uuid.New().String(), req, time.Time{})
	query := `
		INSERT INTO leads (id, store_id, name, email, phone, message, source, score, bucket)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	if err := r.db.QueryRow(ctx, query,
		lead.ID,
		lead.StoreID,
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.Message,
		lead.Source,
		lead.Score,
		string(lead.Bucket),
	).Scan(&lead.CreatedAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}
	return lead, nil
}

// GetByID fetches a lead scoped to the store.
func (r *PostgresRepository) GetByID(ctx context.Context, storeID, id string) (*Lead, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrLeadNotFound
	}
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND store_id = $2`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id, storeID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// ListByStore pages through a store's leads, newest first.
func (r *PostgresRepository) ListByStore(ctx context.Context, storeID string, filter ListLeadsFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE store_id = $1 AND ($2::text = '' OR bucket = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, storeID, string(filter.Bucket), limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := make([]*Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var (
		lead   Lead
		bucket string
	)
	if err := row.Scan(
		&lead.ID,
		&lead.StoreID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Message,
		&lead.Source,
		&lead.Score,
		&bucket,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	lead.Bucket = Bucket(bucket)
	return &lead, nil
}
