package orders

import (
	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// OrderItemInput is one requested line. The JSON tags define the canonical
// shape hashed for idempotency, so renaming a tag changes what counts as
// "the same request".
type OrderItemInput struct {
	MenuItemID uuid.UUID `json:"menuItemId"`
	Qty        int       `json:"qty"`
	Notes      *string   `json:"notes,omitempty"`
}

// CreateOrderInput carries the already-validated, already-tenant-scoped
// arguments for one order creation attempt.
type CreateOrderInput struct {
	TenantID       uuid.UUID
	StoreID        uuid.UUID
	Type           enums.OrderType
	Items          []OrderItemInput
	IdempotencyKey string
}

// OrderReceipt is the exact payload serialized into the idempotency ledger on
// success. Replayed is transport metadata, never part of the stored response.
type OrderReceipt struct {
	OrderID    uuid.UUID `json:"orderId"`
	TicketID   uuid.UUID `json:"ticketId"`
	TotalCents int       `json:"total_cents"`
	Replayed   bool      `json:"-"`
}

type hashedOrderRequest struct {
	Type  enums.OrderType  `json:"type"`
	Items []OrderItemInput `json:"items"`
}
