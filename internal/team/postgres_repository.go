package team

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wolfman30/storefront-platform/internal/database"
)

const memberColumns = `id, store_id, merchant_id, email, role, status, invited_by, invited_at, expires_at, accepted_at, COALESCE(token_hash, '')`

// PostgresRepository stores memberships in the relational database.
type PostgresRepository struct {
	db database.DB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("team: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

// NewPostgresRepositoryWithDB accepts any pgx-compatible handle (used by tests).
func NewPostgresRepositoryWithDB(db database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertInvite(ctx context.Context, m *Member) (*Member, error) {
	query := `
		INSERT INTO team_members (id, store_id, email, role, status, invited_by, invited_at, expires_at, token_hash)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6, $7, $8)
		ON CONFLICT (store_id, email) DO UPDATE
		SET role = EXCLUDED.role,
		    invited_by = EXCLUDED.invited_by,
		    invited_at = EXCLUDED.invited_at,
		    expires_at = EXCLUDED.expires_at,
		    token_hash = EXCLUDED.token_hash
		WHERE team_members.status = 'pending'
		RETURNING ` + memberColumns
	member, err := scanMember(r.db.QueryRow(ctx, query,
		uuid.New().String(),
		m.StoreID,
		m.Email,
		string(m.Role),
		m.InvitedBy,
		m.InvitedAt,
		m.ExpiresAt,
		m.TokenHash,
	))
	if err != nil {
		// The conditional upsert returns no row when the email already accepted.
		if database.IsNoRows(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("team: upsert invite failed: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) GetByTokenHash(ctx context.Context, hash string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE token_hash = $1`
	member, err := scanMember(r.db.QueryRow(ctx, query, hash))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("team: select by token failed: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) Accept(ctx context.Context, id, merchantID string, at time.Time) (*Member, error) {
	query := `
		UPDATE team_members
		SET status = 'accepted', merchant_id = $2, accepted_at = $3, token_hash = NULL
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + memberColumns
	member, err := scanMember(r.db.QueryRow(ctx, query, id, merchantID, at))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("team: accept failed: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) ListByStore(ctx context.Context, storeID string) ([]*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE store_id = $1 ORDER BY invited_at ASC`
	rows, err := r.db.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("team: list failed: %w", err)
	}
	defer rows.Close()
	var out []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("team: scan failed: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("team: list failed: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) GetAccepted(ctx context.Context, storeID, merchantID string) (*Member, error) {
	query := `SELECT ` + memberColumns + ` FROM team_members WHERE store_id = $1 AND merchant_id = $2 AND status = 'accepted'`
	member, err := scanMember(r.db.QueryRow(ctx, query, storeID, merchantID))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("team: select member failed: %w", err)
	}
	return member, nil
}

func (r *PostgresRepository) Remove(ctx context.Context, storeID, memberID string) error {
	if _, err := uuid.Parse(memberID); err != nil {
		return ErrMemberNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM team_members WHERE id = $1 AND store_id = $2`, memberID, storeID)
	if err != nil {
		return fmt.Errorf("team: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *PostgresRepository) AcceptedStoreIDs(ctx context.Context, merchantID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT store_id FROM team_members WHERE merchant_id = $1 AND status = 'accepted'`, merchantID)
	if err != nil {
		return nil, fmt.Errorf("team: list stores failed: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("team: scan failed: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	var role, status string
	if err := row.Scan(
		&m.ID,
		&m.StoreID,
		&m.MerchantID,
		&m.Email,
		&role,
		&status,
		&m.InvitedBy,
		&m.InvitedAt,
		&m.ExpiresAt,
		&m.AcceptedAt,
		&m.TokenHash,
	); err != nil {
		return nil, err
	}
	m.Role = Role(role)
	m.Status = Status(status)
	return &m, nil
}
