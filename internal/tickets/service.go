package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/pagination"
)

// TicketLine is one line on a kitchen ticket.
type TicketLine struct {
	Label string `json:"label"`
	Qty   int    `json:"qty"`
}

// TicketView is the kitchen display projection of a ticket.
type TicketView struct {
	ID        uuid.UUID          `json:"id"`
	OrderID   uuid.UUID          `json:"orderId"`
	StationID uuid.UUID          `json:"stationId"`
	Status    enums.TicketStatus `json:"status"`
	Items     []TicketLine       `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

// Page is one cursor page of open tickets, newest first.
type Page struct {
	Tickets    []TicketView `json:"tickets"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// Service serves the kitchen display: open tickets and their status
// progression.
type Service struct {
	repo Repository
}

func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tickets repository required")
	}
	return &Service{repo: repo}, nil
}

// ListOpen returns QUEUED and IN_PROGRESS tickets newest first.
func (s *Service) ListOpen(ctx context.Context, tenantID, storeID uuid.UUID, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	records, err := s.repo.ListOpen(ctx, tenantID, storeID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing tickets")
	}

	page := &Page{}
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	page.Tickets = toViews(records)
	return page, nil
}

// AdvanceStatus moves a ticket one step forward: QUEUED to IN_PROGRESS, or
// IN_PROGRESS to DONE.
func (s *Service) AdvanceStatus(ctx context.Context, tenantID, storeID, ticketID uuid.UUID) (*TicketView, error) {
	ticket, err := s.repo.FindByID(ctx, tenantID, storeID, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket")
	}

	var next enums.TicketStatus
	switch ticket.Status {
	case enums.TicketStatusQueued:
		next = enums.TicketStatusInProgress
	case enums.TicketStatusInProgress:
		next = enums.TicketStatusDone
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "ticket already done")
	}

	if err := s.repo.UpdateStatus(ctx, ticket.ID, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating ticket status")
	}
	ticket.Status = next

	view := toView(*ticket)
	return &view, nil
}

func toViews(records []models.Ticket) []TicketView {
	views := make([]TicketView, 0, len(records))
	for _, record := range records {
		views = append(views, toView(record))
	}
	return views
}

func toView(record models.Ticket) TicketView {
	lines := make([]TicketLine, 0, len(record.Items))
	for _, item := range record.Items {
		lines = append(lines, TicketLine{Label: item.Label, Qty: item.Qty})
	}
	return TicketView{
		ID:        record.ID,
		OrderID:   record.OrderID,
		StationID: record.StationID,
		Status:    record.Status,
		Items:     lines,
		CreatedAt: record.CreatedAt,
	}
}
