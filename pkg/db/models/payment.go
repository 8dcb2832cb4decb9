package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// Payment is append-only; an order's paid total is always the sum of its
// AppliedCents. ChangeCents is nonzero only for a cash overpayment.
type Payment struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID     uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null"`
	StoreID      uuid.UUID           `gorm:"column:store_id;type:uuid;not null"`
	OrderID      uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Method       enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	AppliedCents int                 `gorm:"column:applied_cents;not null"`
	ChangeCents  int                 `gorm:"column:change_cents;not null;default:0"`
	Ref          *string             `gorm:"column:ref"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}
