package tenants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
)

// Repository resolves tenants and their stores for request scoping.
type Repository interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	FirstStore(ctx context.Context, tenantID uuid.UUID) (*models.Store, error)
	FindStore(ctx context.Context, tenantID, storeID uuid.UUID) (*models.Store, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	var tenant models.Tenant
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&tenant).Error
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *repository) FirstStore(ctx context.Context, tenantID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindStore(ctx context.Context, tenantID, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", storeID, tenantID).
		First(&store).Error
	if err != nil {
		return nil, err
	}
	return &store, nil
}
