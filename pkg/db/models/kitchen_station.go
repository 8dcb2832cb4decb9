package models

import (
	"time"

	"github.com/google/uuid"
)

// KitchenStation is a kitchen work-queue target. Routing picks the first
// station by ascending name for the tenant/store.
type KitchenStation struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID `gorm:"column:tenant_id;type:uuid;not null"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
