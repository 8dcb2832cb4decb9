package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestIsUniqueViolationPgx(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "ux_idempotency_scope"}
	if !IsUniqueViolation(err, "") {
		t.Fatalf("expected unique violation")
	}
	if !IsUniqueViolation(err, "ux_idempotency_scope") {
		t.Fatalf("expected constraint match")
	}
	if IsUniqueViolation(err, "other_constraint") {
		t.Fatalf("expected constraint mismatch")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23503"}, "") {
		t.Fatalf("foreign key violation is not a unique violation")
	}
}

func TestIsUniqueViolationPq(t *testing.T) {
	err := &pq.Error{Code: "23505", Constraint: "ux_idempotency_scope"}
	if !IsUniqueViolation(err, "ux_idempotency_scope") {
		t.Fatalf("expected pq constraint match")
	}
}

func TestIsUniqueViolationWrapped(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505"}
	if !IsUniqueViolation(fmt.Errorf("insert record: %w", inner), "") {
		t.Fatalf("expected wrapped error to match")
	}
}

func TestIsUniqueViolationMessageFallback(t *testing.T) {
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: idempotency_keys.tenant_id"), "") {
		t.Fatalf("expected sqlite message fallback to match")
	}
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatalf("unrelated errors must not match")
	}
	if IsUniqueViolation(nil, "") {
		t.Fatalf("nil is not a violation")
	}
}
