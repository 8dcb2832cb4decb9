package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is an immutable snapshot of a menu item at order time.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	MenuItemID     uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null"`
	NameSnapshot   string    `gorm:"column:name_snapshot;not null"`
	UnitPriceCents int       `gorm:"column:unit_price_cents;not null"`
	Qty            int       `gorm:"column:qty;not null"`
	Notes          *string   `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
