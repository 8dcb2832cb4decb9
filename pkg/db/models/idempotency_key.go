package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

// IdempotencyKey is the dedupe record for one logical client request. The
// unique index on (tenant_id, endpoint, idempotency_key) is the sole
// admission-control point for concurrent duplicates.
type IdempotencyKey struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TenantID       uuid.UUID               `gorm:"column:tenant_id;type:uuid;not null;uniqueIndex:ux_idempotency_scope,priority:1"`
	Endpoint       string                  `gorm:"column:endpoint;not null;uniqueIndex:ux_idempotency_scope,priority:2"`
	IdempotencyKey string                  `gorm:"column:idempotency_key;not null;uniqueIndex:ux_idempotency_scope,priority:3"`
	RequestHash    string                  `gorm:"column:request_hash;not null"`
	Status         enums.IdempotencyStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	ResponseJSON   []byte                  `gorm:"column:response_json;type:jsonb"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
