package tickets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/pagination"
)

func setupTicketsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tickets (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  order_id TEXT NOT NULL,
  station_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'QUEUED',
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS ticket_items (
  id TEXT PRIMARY KEY,
  ticket_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL,
  label TEXT NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}

func seedTicket(t *testing.T, conn *gorm.DB, tenantID, storeID uuid.UUID, status enums.TicketStatus, createdAt time.Time) models.Ticket {
	t.Helper()
	ticket := models.Ticket{
		ID:        uuid.New(),
		TenantID:  tenantID,
		StoreID:   storeID,
		OrderID:   uuid.New(),
		StationID: uuid.New(),
		Status:    status,
		CreatedAt: createdAt,
	}
	require.NoError(t, conn.Create(&ticket).Error)
	return ticket
}

func newTicketService(t *testing.T, conn *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc
}

func TestListOpenNewestFirstExcludesDone(t *testing.T) {
	conn := setupTicketsTestDB(t)
	svc := newTicketService(t, conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	oldest := seedTicket(t, conn, tenantID, storeID, enums.TicketStatusQueued, base)
	seedTicket(t, conn, tenantID, storeID, enums.TicketStatusDone, base.Add(time.Minute))
	newest := seedTicket(t, conn, tenantID, storeID, enums.TicketStatusInProgress, base.Add(2*time.Minute))
	seedTicket(t, conn, uuid.New(), storeID, enums.TicketStatusQueued, base.Add(3*time.Minute))

	page, err := svc.ListOpen(ctx, tenantID, storeID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, page.Tickets, 2)
	assert.Equal(t, newest.ID, page.Tickets[0].ID)
	assert.Equal(t, oldest.ID, page.Tickets[1].ID)
	assert.Empty(t, page.NextCursor)
}

func TestListOpenPaginates(t *testing.T) {
	conn := setupTicketsTestDB(t)
	svc := newTicketService(t, conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		seedTicket(t, conn, tenantID, storeID, enums.TicketStatusQueued, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := svc.ListOpen(ctx, tenantID, storeID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Tickets, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.ListOpen(ctx, tenantID, storeID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Tickets, 1)
	assert.Empty(t, second.NextCursor)
	assert.NotEqual(t, first.Tickets[0].ID, second.Tickets[0].ID)
	assert.NotEqual(t, first.Tickets[1].ID, second.Tickets[0].ID)
}

func TestListOpenRejectsGarbageCursor(t *testing.T) {
	conn := setupTicketsTestDB(t)
	svc := newTicketService(t, conn)

	_, err := svc.ListOpen(context.Background(), uuid.New(), uuid.New(), pagination.Params{Cursor: "not-base64!!"})
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestAdvanceStatusProgression(t *testing.T) {
	conn := setupTicketsTestDB(t)
	svc := newTicketService(t, conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()
	ticket := seedTicket(t, conn, tenantID, storeID, enums.TicketStatusQueued, time.Now().UTC())

	view, err := svc.AdvanceStatus(ctx, tenantID, storeID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusInProgress, view.Status)

	view, err = svc.AdvanceStatus(ctx, tenantID, storeID, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TicketStatusDone, view.Status)

	_, err = svc.AdvanceStatus(ctx, tenantID, storeID, ticket.ID)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestAdvanceStatusUnknownTicket(t *testing.T) {
	conn := setupTicketsTestDB(t)
	svc := newTicketService(t, conn)

	_, err := svc.AdvanceStatus(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
