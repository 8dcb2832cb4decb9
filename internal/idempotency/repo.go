package idempotency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// Repository persists idempotency records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	// InsertPending attempts the atomic PENDING insert; reports whether this
	// caller won the row. A false return with nil error means a record for
	// the scope already existed.
	InsertPending(ctx context.Context, record *models.IdempotencyKey) (bool, error)
	FindByScope(ctx context.Context, tenantID uuid.UUID, endpoint, key string) (*models.IdempotencyKey, error)
	MarkCompleted(ctx context.Context, tenantID uuid.UUID, endpoint, key string, response []byte) error
	MarkFailed(ctx context.Context, tenantID uuid.UUID, endpoint, key string) error
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteStalePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an idempotency repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) InsertPending(ctx context.Context, record *models.IdempotencyKey) (bool, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"},
				{Name: "endpoint"},
				{Name: "idempotency_key"},
			},
			DoNothing: true,
		}).
		Create(record)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FindByScope(ctx context.Context, tenantID uuid.UUID, endpoint, key string) (*models.IdempotencyKey, error) {
	var record models.IdempotencyKey
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND endpoint = ? AND idempotency_key = ?", tenantID, endpoint, key).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) MarkCompleted(ctx context.Context, tenantID uuid.UUID, endpoint, key string, response []byte) error {
	res := r.db.WithContext(ctx).
		Model(&models.IdempotencyKey{}).
		Where("tenant_id = ? AND endpoint = ? AND idempotency_key = ? AND status = ?",
			tenantID, endpoint, key, enums.IdempotencyStatusPending).
		Updates(map[string]any{
			"status":        enums.IdempotencyStatusCompleted,
			"response_json": response,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) MarkFailed(ctx context.Context, tenantID uuid.UUID, endpoint, key string) error {
	res := r.db.WithContext(ctx).
		Model(&models.IdempotencyKey{}).
		Where("tenant_id = ? AND endpoint = ? AND idempotency_key = ? AND status = ?",
			tenantID, endpoint, key, enums.IdempotencyStatusPending).
		Update("status", enums.IdempotencyStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status IN ? AND created_at < ?",
			[]enums.IdempotencyStatus{enums.IdempotencyStatusCompleted, enums.IdempotencyStatusFailed}, cutoff).
		Delete(&models.IdempotencyKey{})
	return res.RowsAffected, res.Error
}

func (r *repository) DeleteStalePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.IdempotencyStatusPending, cutoff).
		Delete(&models.IdempotencyKey{})
	return res.RowsAffected, res.Error
}
