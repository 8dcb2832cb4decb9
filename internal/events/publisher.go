package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
	pkgredis "github.com/tillpointhq/tillpoint-backend/pkg/redis"
)

// TicketCreatedEvent is published on a tenant-scoped channel after an order
// transaction commits.
type TicketCreatedEvent struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	StoreID    uuid.UUID `json:"store_id"`
	OrderID    uuid.UUID `json:"orderId"`
	TicketID   uuid.UUID `json:"ticketId"`
	TotalCents int       `json:"total_cents"`
}

// Publisher delivers ticket notifications. Delivery is best-effort and
// non-blocking from the caller's perspective: a publish with zero current
// subscribers is logged, not retried; a transport failure is logged and
// swallowed. Nothing is persisted, so consumers must not depend on
// guaranteed receipt.
type Publisher interface {
	TicketCreated(ctx context.Context, event TicketCreatedEvent)
}

type publishStore interface {
	Publish(ctx context.Context, channel string, payload any) (int64, error)
}

type redisPublisher struct {
	store publishStore
	logg  *logger.Logger
}

// NewRedisPublisher builds the Redis pub/sub backed publisher.
func NewRedisPublisher(store publishStore, logg *logger.Logger) (Publisher, error) {
	if store == nil {
		return nil, fmt.Errorf("redis store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &redisPublisher{store: store, logg: logg}, nil
}

func (p *redisPublisher) TicketCreated(ctx context.Context, event TicketCreatedEvent) {
	channel := pkgredis.TicketEventChannel(event.TenantID.String())
	ctx = p.logg.WithFields(ctx, map[string]any{
		"channel":   channel,
		"order_id":  event.OrderID,
		"ticket_id": event.TicketID,
	})

	payload, err := json.Marshal(event)
	if err != nil {
		p.logg.Error(ctx, "ticket event encode failed", err)
		return
	}

	receivers, err := p.store.Publish(ctx, channel, payload)
	if err != nil {
		p.logg.Error(ctx, "ticket event publish failed", err)
		return
	}
	if receivers == 0 {
		p.logg.Info(ctx, "ticket event published with no subscribers")
		return
	}
	p.logg.Info(ctx, "ticket event published")
}
