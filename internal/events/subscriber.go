package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
	pkgredis "github.com/tillpointhq/tillpoint-backend/pkg/redis"
)

// Subscriber tails ticket channels across all tenants and logs each event.
// It is the consumer side of the best-effort pub/sub pipe; a kitchen display
// service would hang off the same pattern.
type Subscriber struct {
	client *pkgredis.Client
	logg   *logger.Logger
}

func NewSubscriber(client *pkgredis.Client, logg *logger.Logger) (*Subscriber, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Subscriber{client: client, logg: logg}, nil
}

// Run blocks consuming ticket events until ctx is canceled.
func (s *Subscriber) Run(ctx context.Context) error {
	sub, err := s.client.PSubscribe(ctx, pkgredis.TicketEventChannelPattern)
	if err != nil {
		return fmt.Errorf("subscribing to ticket channels: %w", err)
	}
	defer sub.Close()

	s.logg.Info(s.logg.WithField(ctx, "pattern", pkgredis.TicketEventChannelPattern), "ticket event subscriber started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("subscription channel closed")
			}
			s.handle(ctx, msg.Channel, []byte(msg.Payload))
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, channel string, payload []byte) {
	ctx = s.logg.WithField(ctx, "channel", channel)

	var event TicketCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		s.logg.Warn(ctx, "ticket event decode failed: "+err.Error())
		return
	}

	ctx = s.logg.WithFields(ctx, map[string]any{
		"tenant":      tenantFromChannel(channel),
		"order_id":    event.OrderID,
		"ticket_id":   event.TicketID,
		"total_cents": event.TotalCents,
	})
	s.logg.Info(ctx, "ticket created")
}

// tenantFromChannel extracts the tenant segment of "tenant:{id}:tickets.created".
func tenantFromChannel(channel string) string {
	parts := strings.Split(channel, ":")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
