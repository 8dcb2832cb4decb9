package models

import (
	"time"

	"github.com/google/uuid"
)

// TicketItem mirrors an OrderItem for display to kitchen staff.
type TicketItem struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TicketID    uuid.UUID `gorm:"column:ticket_id;type:uuid;not null"`
	OrderItemID uuid.UUID `gorm:"column:order_item_id;type:uuid;not null"`
	Label       string    `gorm:"column:label;not null"`
	Qty         int       `gorm:"column:qty;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
