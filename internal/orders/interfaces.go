package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
)

// Repository exposes the storage operations used by the order transaction.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindActiveMenuItems(ctx context.Context, tenantID, storeID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	UpdateOrderTotals(ctx context.Context, orderID uuid.UUID, subtotalCents, totalCents int) error
	FirstStationByName(ctx context.Context, tenantID, storeID uuid.UUID) (*models.KitchenStation, error)
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	CreateTicketItems(ctx context.Context, items []models.TicketItem) error
}
