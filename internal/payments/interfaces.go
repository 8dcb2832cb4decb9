package payments

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
)

// Repository exposes the storage operations used by the payment transaction.
// LockOrder must acquire an exclusive row lock held until the surrounding
// transaction ends; it is what serializes concurrent payments per order.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockOrder(ctx context.Context, tenantID, storeID, orderID uuid.UUID) (*models.Order, error)
	SumApplied(ctx context.Context, orderID uuid.UUID) (int, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	CloseOrder(ctx context.Context, orderID uuid.UUID, closedAt time.Time) error
}
