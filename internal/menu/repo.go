package menu

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
)

// Repository exposes menu reads for the storefront surface.
type Repository interface {
	ListActive(ctx context.Context, tenantID, storeID uuid.UUID) ([]models.MenuItem, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListActive(ctx context.Context, tenantID, storeID uuid.UUID) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND store_id = ? AND active = ?", tenantID, storeID, true).
		Order("name ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
