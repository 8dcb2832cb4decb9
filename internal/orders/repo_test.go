package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tillpointhq/tillpoint-backend/pkg/db/models"
	"github.com/tillpointhq/tillpoint-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_cents INTEGER NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS kitchen_stations (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  name TEXT NOT NULL,
  created_at DATETIME
);
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'TAKEAWAY',
  status TEXT NOT NULL DEFAULT 'IN_KITCHEN',
  subtotal_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL DEFAULT 0,
  closed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  name_snapshot TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  notes TEXT,
  created_at DATETIME
);
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

func seedMenuItem(t *testing.T, conn *gorm.DB, tenantID, storeID uuid.UUID, name string, priceCents int, active bool) models.MenuItem {
	t.Helper()
	item := models.MenuItem{
		ID:         uuid.New(),
		TenantID:   tenantID,
		StoreID:    storeID,
		Name:       name,
		PriceCents: priceCents,
		Active:     active,
	}
	require.NoError(t, conn.Create(&item).Error)
	return item
}

func TestFindActiveMenuItemsFiltersScopeAndActive(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()

	burger := seedMenuItem(t, conn, tenantID, storeID, "Burger", 500, true)
	retired := seedMenuItem(t, conn, tenantID, storeID, "Retired", 400, false)
	elsewhere := seedMenuItem(t, conn, tenantID, uuid.New(), "Other Store", 300, true)

	found, err := repo.FindActiveMenuItems(ctx, tenantID, storeID, []uuid.UUID{burger.ID, retired.ID, elsewhere.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, burger.ID, found[0].ID)
}

func TestFirstStationByNameOrdering(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()

	for _, name := range []string{"grill", "bar", "fryer"} {
		require.NoError(t, conn.Create(&models.KitchenStation{
			ID:       uuid.New(),
			TenantID: tenantID,
			StoreID:  storeID,
			Name:     name,
		}).Error)
	}

	station, err := repo.FirstStationByName(ctx, tenantID, storeID)
	require.NoError(t, err)
	assert.Equal(t, "bar", station.Name)
}

func TestFirstStationByNameNotFound(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)

	_, err := repo.FirstStationByName(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestOrderItemSnapshotSurvivesMenuEdits(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()
	burger := seedMenuItem(t, conn, tenantID, storeID, "Burger", 500, true)

	order := &models.Order{TenantID: tenantID, StoreID: storeID, Type: enums.OrderTypeTakeaway, Status: enums.OrderStatusInKitchen}
	require.NoError(t, repo.CreateOrder(ctx, order))

	items := []models.OrderItem{{
		OrderID:        order.ID,
		MenuItemID:     burger.ID,
		NameSnapshot:   burger.Name,
		UnitPriceCents: burger.PriceCents,
		Qty:            2,
	}}
	require.NoError(t, repo.CreateOrderItems(ctx, items))
	require.NoError(t, repo.UpdateOrderTotals(ctx, order.ID, 1000, 1000))

	// Reprice and rename the menu item after the sale.
	require.NoError(t, conn.Model(&models.MenuItem{}).
		Where("id = ?", burger.ID).
		Updates(map[string]any{"name": "Deluxe Burger", "price_cents": 900}).Error)

	var persisted models.OrderItem
	require.NoError(t, conn.Where("order_id = ?", order.ID).First(&persisted).Error)
	assert.Equal(t, "Burger", persisted.NameSnapshot)
	assert.Equal(t, 500, persisted.UnitPriceCents)

	var reloaded models.Order
	require.NoError(t, conn.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, 1000, reloaded.TotalCents)
}

func TestCreateTicketWithItems(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	tenantID := uuid.New()
	storeID := uuid.New()

	order := &models.Order{TenantID: tenantID, StoreID: storeID, Type: enums.OrderTypeWeb, Status: enums.OrderStatusInKitchen}
	require.NoError(t, repo.CreateOrder(ctx, order))

	items := []models.OrderItem{{OrderID: order.ID, MenuItemID: uuid.New(), NameSnapshot: "Tea", UnitPriceCents: 150, Qty: 1}}
	require.NoError(t, repo.CreateOrderItems(ctx, items))

	station := models.KitchenStation{ID: uuid.New(), TenantID: tenantID, StoreID: storeID, Name: "pass"}
	require.NoError(t, conn.Create(&station).Error)

	ticket := &models.Ticket{TenantID: tenantID, StoreID: storeID, OrderID: order.ID, StationID: station.ID, Status: enums.TicketStatusQueued}
	require.NoError(t, repo.CreateTicket(ctx, ticket))
	require.NoError(t, repo.CreateTicketItems(ctx, []models.TicketItem{{
		TicketID:    ticket.ID,
		OrderItemID: items[0].ID,
		Label:       items[0].NameSnapshot,
		Qty:         items[0].Qty,
	}}))

	var persisted []models.TicketItem
	require.NoError(t, conn.Where("ticket_id = ?", ticket.ID).Find(&persisted).Error)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Tea", persisted[0].Label)
	assert.Equal(t, items[0].ID, persisted[0].OrderItemID)
}
