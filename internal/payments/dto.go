package payments

import (
	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// ApplyPaymentInput carries the already-validated, already-tenant-scoped
// arguments for one payment attempt.
type ApplyPaymentInput struct {
	TenantID       uuid.UUID
	StoreID        uuid.UUID
	OrderID        uuid.UUID
	Method         enums.PaymentMethod
	AmountCents    int
	Ref            *string
	IdempotencyKey string
}

// PaymentSummary is the exact payload serialized into the idempotency ledger
// on success. Replayed is transport metadata, never part of the stored
// response.
type PaymentSummary struct {
	OrderID        uuid.UUID `json:"orderId"`
	TotalCents     int       `json:"total_cents"`
	PaidCents      int       `json:"paid_cents"`
	RemainingCents int       `json:"remaining_cents"`
	Closed         bool      `json:"closed"`
	ChangeCents    int       `json:"change_cents"`
	Replayed       bool      `json:"-"`
}

type hashedPaymentRequest struct {
	OrderID     uuid.UUID           `json:"orderId"`
	Method      enums.PaymentMethod `json:"method"`
	AmountCents int                 `json:"amount_cents"`
	Ref         *string             `json:"ref,omitempty"`
}
