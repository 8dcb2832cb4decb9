package orders

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/api/middleware"
	"github.com/tillpointhq/tillpoint-backend/api/responses"
	"github.com/tillpointhq/tillpoint-backend/api/validators"
	paymentsvc "github.com/tillpointhq/tillpoint-backend/internal/payments"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

type applyPaymentRequest struct {
	Method      string  `json:"method" validate:"required,oneof=CASH CARD UPI WALLET COUPON"`
	AmountCents int     `json:"amount_cents" validate:"required,gt=0"`
	Ref         *string `json:"ref,omitempty" validate:"omitempty,max=120"`
}

type paymentSummaryResponse struct {
	OrderID        uuid.UUID `json:"orderId"`
	TotalCents     int       `json:"total_cents"`
	PaidCents      int       `json:"paid_cents"`
	RemainingCents int       `json:"remaining_cents"`
	Closed         bool      `json:"closed"`
	ChangeCents    int       `json:"change_cents"`
}

// ApplyPayment handles POST /api/v1/orders/{orderID}/payments. A fresh
// payment answers 201; a ledger replay answers 200 with the
// Idempotency-Replayed header set.
func ApplyPayment(svc *paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		key := idempotencyKeyFromRequest(r)
		if key == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key header required"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		var req applyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ref := req.Ref
		if ref != nil {
			clean := validators.SanitizeString(*ref, maxRefLen)
			ref = &clean
		}

		summary, err := svc.ApplyPayment(ctx, paymentsvc.ApplyPaymentInput{
			TenantID:       middleware.TenantIDFromContext(ctx),
			StoreID:        middleware.StoreIDFromContext(ctx),
			OrderID:        orderID,
			Method:         enums.PaymentMethod(req.Method),
			AmountCents:    req.AmountCents,
			Ref:            ref,
			IdempotencyKey: key,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		status := http.StatusCreated
		if summary.Replayed {
			status = http.StatusOK
			w.Header().Set(replayedHeader, "true")
		}
		responses.WriteSuccessStatus(w, status, paymentSummaryResponse{
			OrderID:        summary.OrderID,
			TotalCents:     summary.TotalCents,
			PaidCents:      summary.PaidCents,
			RemainingCents: summary.RemainingCents,
			Closed:         summary.Closed,
			ChangeCents:    summary.ChangeCents,
		})
	}
}
