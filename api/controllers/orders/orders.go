package orders

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/api/middleware"
	"github.com/tillpointhq/tillpoint-backend/api/responses"
	"github.com/tillpointhq/tillpoint-backend/api/validators"
	ordersvc "github.com/tillpointhq/tillpoint-backend/internal/orders"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

const (
	idempotencyKeyHeader    = "Idempotency-Key"
	idempotencyKeyAltHeader = "X-Idempotency-Key"
	replayedHeader          = "Idempotency-Replayed"

	maxNotesLen = 300
	maxRefLen   = 120
)

type createOrderItemRequest struct {
	MenuItemID uuid.UUID `json:"menuItemId" validate:"required"`
	Qty        int       `json:"qty" validate:"omitempty,min=1"`
	Notes      *string   `json:"notes,omitempty" validate:"omitempty,max=300"`
}

type createOrderRequest struct {
	Type  string                   `json:"type" validate:"required,oneof=TAKEAWAY DINE_IN WEB"`
	Items []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type orderReceiptResponse struct {
	OrderID    uuid.UUID `json:"orderId"`
	TicketID   uuid.UUID `json:"ticketId"`
	TotalCents int       `json:"total_cents"`
}

// idempotencyKeyFromRequest accepts either header spelling; clients in the
// wild use both.
func idempotencyKeyFromRequest(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader)); key != "" {
		return key
	}
	return strings.TrimSpace(r.Header.Get(idempotencyKeyAltHeader))
}

// CreateOrder handles POST /api/v1/orders. A fresh creation answers 201; a
// ledger replay answers 200 with the Idempotency-Replayed header set.
func CreateOrder(svc *ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		key := idempotencyKeyFromRequest(r)
		if key == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key header required"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		items := make([]ordersvc.OrderItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			qty := item.Qty
			if qty == 0 {
				qty = 1
			}
			notes := item.Notes
			if notes != nil {
				clean := validators.SanitizeString(*notes, maxNotesLen)
				notes = &clean
			}
			items = append(items, ordersvc.OrderItemInput{
				MenuItemID: item.MenuItemID,
				Qty:        qty,
				Notes:      notes,
			})
		}

		receipt, err := svc.CreateOrder(ctx, ordersvc.CreateOrderInput{
			TenantID:       middleware.TenantIDFromContext(ctx),
			StoreID:        middleware.StoreIDFromContext(ctx),
			Type:           enums.OrderType(req.Type),
			Items:          items,
			IdempotencyKey: key,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusCreated
		if receipt.Replayed {
			status = http.StatusOK
			w.Header().Set(replayedHeader, "true")
		}
		responses.WriteSuccessStatus(w, status, orderReceiptResponse{
			OrderID:    receipt.OrderID,
			TicketID:   receipt.TicketID,
			TotalCents: receipt.TotalCents,
		})
	}
}
