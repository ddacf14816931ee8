package database

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "stores_subdomain_key"})
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected wrapped unique violation to match")
	}
	if !IsUniqueViolation(err, "stores_subdomain_key") {
		t.Fatalf("expected constraint name to match")
	}
	if IsUniqueViolation(err, "stores_custom_domain_key") {
		t.Fatalf("expected other constraint not to match")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("expected foreign key violation not to match")
	}
	if IsUniqueViolation(fmt.Errorf("boom"), "") {
		t.Fatalf("expected plain error not to match")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	if !IsForeignKeyViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23503"})) {
		t.Fatalf("expected wrapped foreign key violation to match")
	}
	if IsForeignKeyViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("expected unique violation not to match")
	}
}

func TestIsNoRows(t *testing.T) {
	if !IsNoRows(fmt.Errorf("select: %w", pgx.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to match")
	}
	if IsNoRows(fmt.Errorf("other")) {
		t.Fatalf("expected other error not to match")
	}
}
