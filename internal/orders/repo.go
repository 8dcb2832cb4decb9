package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindActiveMenuItems(ctx context.Context, tenantID, storeID uuid.UUID, ids []uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND id IN ? AND active = ?", tenantID, storeID, ids, true).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) UpdateOrderTotals(ctx context.Context, orderID uuid.UUID, subtotalCents, totalCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"subtotal_cents": subtotalCents,
			"total_cents":    totalCents,
		}).Error
}

func (r *repository) FirstStationByName(ctx context.Context, tenantID, storeID uuid.UUID) (*models.KitchenStation, error) {
	var station models.KitchenStation
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ?", tenantID, storeID).
		Order("name ASC").
		First(&station).Error
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *repository) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) CreateTicketItems(ctx context.Context, items []models.TicketItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	return r.db.WithContext(ctx).Create(&items).Error
}
