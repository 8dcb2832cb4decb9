package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/internal/events"
	"github.com/tillpointhq/tillpoint-backend/internal/idempotency"
	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

// EndpointOrders scopes idempotency keys for order creation.
const EndpointOrders = "/orders"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type admissionLedger interface {
	Admit(ctx context.Context, tenantID uuid.UUID, endpoint, key, requestHash string) (*idempotency.Admission, error)
	Complete(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, endpoint, key string, response any) error
	MarkFailed(ctx context.Context, tenantID uuid.UUID, endpoint, key string) error
}

// Service runs the order transaction: validate lines, snapshot prices, route
// a kitchen ticket, all inside one database transaction gated by the
// idempotency ledger.
type Service struct {
	db        txRunner
	repo      Repository
	ledger    admissionLedger
	publisher events.Publisher
	logg      *logger.Logger
}

func NewService(db txRunner, repo Repository, ledger admissionLedger, publisher events.Publisher, logg *logger.Logger) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("idempotency ledger required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{db: db, repo: repo, ledger: ledger, publisher: publisher, logg: logg}, nil
}

// CreateOrder creates an order with its first kitchen ticket, exactly once per
// (tenant, key). A replayed receipt carries Replayed=true and fires no event.
func (s *Service) CreateOrder(ctx context.Context, input CreateOrderInput) (*OrderReceipt, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order type")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	requestHash, err := idempotency.HashRequest(hashedOrderRequest{Type: input.Type, Items: input.Items})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing order request")
	}

	admission, err := s.ledger.Admit(ctx, input.TenantID, EndpointOrders, key, requestHash)
	if err != nil {
		return nil, err
	}
	if !admission.Admitted {
		var receipt OrderReceipt
		if err := json.Unmarshal(admission.Replay, &receipt); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored order receipt")
		}
		receipt.Replayed = true
		return &receipt, nil
	}

	receipt, err := s.runOrderTx(ctx, input, key)
	if err != nil {
		if failErr := s.ledger.MarkFailed(ctx, input.TenantID, EndpointOrders, key); failErr != nil {
			s.logg.Error(ctx, "marking order attempt failed", failErr)
		}
		return nil, err
	}

	s.publisher.TicketCreated(ctx, events.TicketCreatedEvent{
		TenantID:   input.TenantID,
		StoreID:    input.StoreID,
		OrderID:    receipt.OrderID,
		TicketID:   receipt.TicketID,
		TotalCents: receipt.TotalCents,
	})

	return receipt, nil
}

func (s *Service) runOrderTx(ctx context.Context, input CreateOrderInput, key string) (*OrderReceipt, error) {
	var receipt *OrderReceipt

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(input.Items))
		for _, item := range input.Items {
			ids = append(ids, item.MenuItemID)
		}

		menuItems, err := repo.FindActiveMenuItems(ctx, input.TenantID, input.StoreID, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading menu items")
		}
		// The count check also rejects duplicate menu item ids across lines:
		// the lookup returns one row per id.
		if len(menuItems) != len(ids) {
			return pkgerrors.New(pkgerrors.CodeValidation, "one or more menu items invalid")
		}
		byID := make(map[uuid.UUID]models.MenuItem, len(menuItems))
		for _, item := range menuItems {
			byID[item.ID] = item
		}

		order := &models.Order{
			TenantID: input.TenantID,
			StoreID:  input.StoreID,
			Type:     input.Type,
			Status:   enums.OrderStatusInKitchen,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
		}

		subtotal := 0
		orderItems := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			if line.Qty <= 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid qty")
			}
			menuItem := byID[line.MenuItemID]
			orderItems = append(orderItems, models.OrderItem{
				OrderID:        order.ID,
				MenuItemID:     menuItem.ID,
				NameSnapshot:   menuItem.Name,
				UnitPriceCents: menuItem.PriceCents,
				Qty:            line.Qty,
				Notes:          line.Notes,
			})
			subtotal += menuItem.PriceCents * line.Qty
		}
		if err := repo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order items")
		}
		if err := repo.UpdateOrderTotals(ctx, order.ID, subtotal, subtotal); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order totals")
		}

		station, err := repo.FirstStationByName(ctx, input.TenantID, input.StoreID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no kitchen station configured")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "selecting kitchen station")
		}

		ticket := &models.Ticket{
			TenantID:  input.TenantID,
			StoreID:   input.StoreID,
			OrderID:   order.ID,
			StationID: station.ID,
			Status:    enums.TicketStatusQueued,
		}
		if err := repo.CreateTicket(ctx, ticket); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating ticket")
		}

		ticketItems := make([]models.TicketItem, 0, len(orderItems))
		for _, item := range orderItems {
			ticketItems = append(ticketItems, models.TicketItem{
				TicketID:    ticket.ID,
				OrderItemID: item.ID,
				Label:       item.NameSnapshot,
				Qty:         item.Qty,
			})
		}
		if err := repo.CreateTicketItems(ctx, ticketItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating ticket items")
		}

		receipt = &OrderReceipt{OrderID: order.ID, TicketID: ticket.ID, TotalCents: subtotal}

		return s.ledger.Complete(ctx, tx, input.TenantID, EndpointOrders, key, receipt)
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
