package tickets

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	"github.com/tillpointhq/tillpoint-backend/pkg/pagination"
)

// Repository exposes kitchen-facing ticket reads and status updates.
type Repository interface {
	ListOpen(ctx context.Context, tenantID, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Ticket, error)
	FindByID(ctx context.Context, tenantID, storeID, ticketID uuid.UUID) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID uuid.UUID, status enums.TicketStatus) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListOpen(ctx context.Context, tenantID, storeID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Ticket, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND store_id = ? AND status IN ?", tenantID, storeID,
			[]enums.TicketStatus{enums.TicketStatusQueued, enums.TicketStatusInProgress}).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var records []models.Ticket
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) FindByID(ctx context.Context, tenantID, storeID, ticketID uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND tenant_id = ? AND store_id = ?", ticketID, tenantID, storeID).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) UpdateStatus(ctx context.Context, ticketID uuid.UUID, status enums.TicketStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Update("status", status).Error
}
