package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// Order is created atomically with its first ticket. Subtotal and total are
// equal today; total may diverge if a discount stage is ever added.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID      uuid.UUID         `gorm:"column:tenant_id;type:uuid;not null"`
	StoreID       uuid.UUID         `gorm:"column:store_id;type:uuid;not null"`
	Type          enums.OrderType   `gorm:"column:type;type:text;not null;default:'TAKEAWAY'"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'IN_KITCHEN'"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null;default:0"`
	TotalCents    int               `gorm:"column:total_cents;not null;default:0"`
	ClosedAt      *time.Time        `gorm:"column:closed_at"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments      []Payment         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
