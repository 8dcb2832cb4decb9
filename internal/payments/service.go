package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/internal/idempotency"
	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

// EndpointPayments scopes idempotency keys for payment application.
const EndpointPayments = "/payments"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type admissionLedger interface {
	Admit(ctx context.Context, tenantID uuid.UUID, endpoint, key, requestHash string) (*idempotency.Admission, error)
	Complete(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, endpoint, key string, response any) error
	MarkFailed(ctx context.Context, tenantID uuid.UUID, endpoint, key string) error
}

// Service applies payments against an order's remaining balance under a
// pessimistic row lock, closing the order exactly once when fully paid.
type Service struct {
	db     txRunner
	repo   Repository
	ledger admissionLedger
	logg   *logger.Logger
	now    func() time.Time
}

func NewService(db txRunner, repo Repository, ledger admissionLedger, logg *logger.Logger) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("idempotency ledger required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{db: db, repo: repo, ledger: ledger, logg: logg, now: time.Now}, nil
}

// ApplyPayment records a payment exactly once per (tenant, key). A replayed
// summary carries Replayed=true.
func (s *Service) ApplyPayment(ctx context.Context, input ApplyPaymentInput) (*PaymentSummary, error) {
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	requestHash, err := idempotency.HashRequest(hashedPaymentRequest{
		OrderID:     input.OrderID,
		Method:      input.Method,
		AmountCents: input.AmountCents,
		Ref:         input.Ref,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing payment request")
	}

	admission, err := s.ledger.Admit(ctx, input.TenantID, EndpointPayments, key, requestHash)
	if err != nil {
		return nil, err
	}
	if !admission.Admitted {
		var summary PaymentSummary
		if err := json.Unmarshal(admission.Replay, &summary); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding stored payment summary")
		}
		summary.Replayed = true
		return &summary, nil
	}

	summary, err := s.runPaymentTx(ctx, input, key)
	if err != nil {
		if failErr := s.ledger.MarkFailed(ctx, input.TenantID, EndpointPayments, key); failErr != nil {
			s.logg.Error(ctx, "marking payment attempt failed", failErr)
		}
		return nil, err
	}
	return summary, nil
}

func (s *Service) runPaymentTx(ctx context.Context, input ApplyPaymentInput, key string) (*PaymentSummary, error) {
	var summary *PaymentSummary

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.LockOrder(ctx, input.TenantID, input.StoreID, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "locking order")
		}
		if order.Status == enums.OrderStatusCanceled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is canceled")
		}

		paid, err := repo.SumApplied(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "summing payments")
		}
		remaining := order.TotalCents - paid
		if remaining < 0 {
			remaining = 0
		}

		applied := input.AmountCents
		change := 0
		if input.AmountCents > remaining {
			if !input.Method.AllowsOverpay() {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "overpayment not allowed for this method")
			}
			applied = remaining
			change = input.AmountCents - remaining
		}

		payment := &models.Payment{
			TenantID:     input.TenantID,
			StoreID:      input.StoreID,
			OrderID:      order.ID,
			Method:       input.Method,
			AppliedCents: applied,
			ChangeCents:  change,
			Ref:          input.Ref,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment")
		}

		paidNow := paid + applied
		closed := order.Status == enums.OrderStatusClosed
		if paidNow >= order.TotalCents && !closed {
			if err := repo.CloseOrder(ctx, order.ID, s.now().UTC()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "closing order")
			}
			closed = true
		}

		remainingNow := order.TotalCents - paidNow
		if remainingNow < 0 {
			remainingNow = 0
		}

		summary = &PaymentSummary{
			OrderID:        order.ID,
			TotalCents:     order.TotalCents,
			PaidCents:      paidNow,
			RemainingCents: remainingNow,
			Closed:         closed,
			ChangeCents:    change,
		}

		return s.ledger.Complete(ctx, tx, input.TenantID, EndpointPayments, key, summary)
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}
