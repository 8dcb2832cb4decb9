package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db"
	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
)

// Admission is the outcome of consulting the ledger before running an
// operation. Exactly one of the two shapes applies: Admitted means the caller
// owns the PENDING record and must run the operation; a non-nil Replay carries
// the stored response of a completed prior attempt and the caller must return
// it without re-executing side effects.
type Admission struct {
	Admitted bool
	Replay   json.RawMessage
}

// Ledger is the dedupe/replay gate in front of the transactional operations.
//
// A FAILED record blocks reuse of its key exactly like a PENDING one: the
// unique constraint prevents re-insertion and Admit answers InProgress.
// Whether a failed attempt should instead free the key for a fresh try is an
// open product decision; do not change this without one.
type Ledger struct {
	repo Repository
}

// NewLedger builds the ledger on top of the repository.
func NewLedger(repo Repository) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("idempotency repository required")
	}
	return &Ledger{repo: repo}, nil
}

// HashRequest digests the semantically relevant request payload. Struct field
// order makes the JSON encoding canonical for a given payload type.
func HashRequest(payload any) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding request payload: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

// Admit inserts the PENDING record or resolves the existing one for the key.
func (l *Ledger) Admit(ctx context.Context, tenantID uuid.UUID, endpoint, key, requestHash string) (*Admission, error) {
	record := &models.IdempotencyKey{
		TenantID:       tenantID,
		Endpoint:       endpoint,
		IdempotencyKey: key,
		RequestHash:    requestHash,
		Status:         enums.IdempotencyStatusPending,
	}

	inserted, err := l.repo.InsertPending(ctx, record)
	if err != nil && !db.IsUniqueViolation(err, "ux_idempotency_scope") {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inserting idempotency record")
	}
	if inserted {
		return &Admission{Admitted: true}, nil
	}

	existing, err := l.repo.FindByScope(ctx, tenantID, endpoint, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency lookup failed")
	}

	if existing.RequestHash != requestHash {
		return nil, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different payload")
	}

	if existing.Status == enums.IdempotencyStatusCompleted && len(existing.ResponseJSON) > 0 {
		return &Admission{Replay: json.RawMessage(existing.ResponseJSON)}, nil
	}

	return nil, pkgerrors.New(pkgerrors.CodeInProgress, "request in progress")
}

// Complete transitions PENDING to COMPLETED and stores the response. It must
// run on tx, inside the same transaction that produced the response.
func (l *Ledger) Complete(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, endpoint, key string, response any) error {
	encoded, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("encoding response payload: %w", err)
	}
	if err := l.repo.WithTx(tx).MarkCompleted(ctx, tenantID, endpoint, key, encoded); err != nil {
		return fmt.Errorf("completing idempotency record: %w", err)
	}
	return nil
}

// MarkFailed transitions PENDING to FAILED. It runs in its own unit of work so
// it survives the rollback it is reporting.
func (l *Ledger) MarkFailed(ctx context.Context, tenantID uuid.UUID, endpoint, key string) error {
	if err := l.repo.MarkFailed(ctx, tenantID, endpoint, key); err != nil {
		return fmt.Errorf("marking idempotency record failed: %w", err)
	}
	return nil
}
