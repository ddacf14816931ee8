// Package merchants stores the people who own and operate stores.
package merchants

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/storefront-platform/internal/apperrors"
	"github.com/wolfman30/storefront-platform/internal/database"
)

var (
	ErrMerchantNotFound = apperrors.NotFound("merchant_not_found", "merchant not found")
	ErrInvalidEmail     = apperrors.Validation("invalid_email", "a valid email address is required")
)

// Merchant is an authenticated platform user. Its ID is the token subject.
type Merchant struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail lowercases and validates an address.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Repository defines the interface for merchant storage
type Repository interface {
	GetOrCreateByEmail(ctx context.Context, email string) (*Merchant, error)
	GetByID(ctx context.Context, id string) (*Merchant, error)
}

// InMemoryRepository keeps merchants in process memory.
type InMemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]*Merchant
	byEmail map[string]string
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:    make(map[string]*Merchant),
		byEmail: make(map[string]string),
	}
}

func (r *InMemoryRepository) GetOrCreateByEmail(ctx context.Context, email string) (*Merchant, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byEmail[email]; ok {
		cp := *r.byID[id]
		return &cp, nil
	}
	now := time.Now().UTC()
	m := &Merchant{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[m.ID] = m
	r.byEmail[email] = m.ID
	cp := *m
	return &cp, nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return nil, ErrMerchantNotFound
	}
	cp := *m
	return &cp, nil
}

// PostgresRepository stores merchants in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("merchants: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB accepts any pgx-compatible handle (used by tests).
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreateByEmail upserts on the unique email so concurrent first logins converge on one row.
func (r *PostgresRepository) GetOrCreateByEmail(ctx context.Context, email string) (*Merchant, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO merchants (id, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, name, created_at, updated_at
	`
	var m Merchant
	if err := r.db.QueryRow(ctx, query, uuid.New().String(), email).Scan(
		&m.ID, &m.Email, &m.Name, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("merchants: upsert failed: %w", err)
	}
	return &m, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Merchant, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrMerchantNotFound
	}
	query := `SELECT id, email, name, created_at, updated_at FROM merchants WHERE id = $1`
	var m Merchant
	if err := r.db.QueryRow(ctx, query, id).Scan(&m.ID, &m.Email, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if database.IsNoRows(err) {
			return nil, ErrMerchantNotFound
		}
		return nil, fmt.Errorf("merchants: select failed: %w", err)
	}
	return &m, nil
}
