package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// Ticket is the kitchen-facing work order derived from an Order (1:1 today).
type Ticket struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID  uuid.UUID          `gorm:"column:tenant_id;type:uuid;not null"`
	StoreID   uuid.UUID          `gorm:"column:store_id;type:uuid;not null"`
	OrderID   uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	StationID uuid.UUID          `gorm:"column:station_id;type:uuid;not null"`
	Status    enums.TicketStatus `gorm:"column:status;type:text;not null;default:'QUEUED'"`
	Items     []TicketItem       `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
