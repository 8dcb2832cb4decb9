package models

import (
	"time"

	"github.com/google/uuid"
)

// MenuItem is a sellable item. Orders snapshot its name and price so later
// menu edits never alter historical orders.
type MenuItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null"`
	StoreID    uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Name       string    `gorm:"column:name;not null"`
	PriceCents int       `gorm:"column:price_cents;not null"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
