package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  short_code INTEGER NOT NULL,
  customer_user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  pickup_gym_id TEXT,
  requested_pickup_at DATETIME,
  note TEXT NOT NULL DEFAULT '',
  arrived_at DATETIME,
  picked_up_at DATETIME,
  canceled_at DATETIME,
  gym_settlement_id TEXT,
  butcher_settlement_id TEXT,
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  name TEXT NOT NULL,
  species TEXT NOT NULL,
  part TEXT NOT NULL,
  unit_label TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  options TEXT,
  total_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  version INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, created time.Time, lineStatuses ...enums.LineStatus) *models.Order {
	t.Helper()

	gymID := uuid.New()
	order := &models.Order{
		ID:             uuid.New(),
		ShortCode:      time.Now().UnixNano() % 1_000_000_000,
		CustomerUserID: uuid.New(),
		Status:         status,
		SubtotalCents:  4200,
		TotalCents:     4200,
		PickupGymID:    &gymID,
		CreatedAt:      created,
	}
	require.NoError(t, db.Create(order).Error)

	for i, ls := range lineStatuses {
		line := models.OrderLine{
			ID:             uuid.New(),
			OrderID:        order.ID,
			Name:           "ribeye",
			Species:        "beef",
			Part:           "rib",
			UnitLabel:      "300g",
			UnitPriceCents: 2100,
			Qty:            1,
			TotalCents:     2100,
			Status:         ls,
			CreatedAt:      created.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, db.Create(&line).Error)
	}
	return order
}

func TestRepoFindOrderPreloadsLines(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, enums.OrderStatusPreparing, time.Now().UTC(),
		enums.LineStatusPreparing, enums.LineStatusReady)

	order, err := repo.FindOrder(ctx, seeded.ID)
	require.NoError(t, err)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, enums.LineStatusPreparing, order.Lines[0].Status)
	assert.Equal(t, enums.LineStatusReady, order.Lines[1].Status)
}

func TestRepoUpdateLineVersioned(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, enums.OrderStatusPreparing, time.Now().UTC(), enums.LineStatusPreparing)
	lineID := mustFirstLineID(t, db, seeded.ID)

	err := repo.UpdateLineVersioned(ctx, lineID, 0, map[string]any{
		"status": enums.LineStatusReady,
	})
	require.NoError(t, err)

	line, err := repo.FindLine(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, enums.LineStatusReady, line.Status)
	assert.Equal(t, 1, line.Version)

	// A second writer holding the stale version must lose.
	err = repo.UpdateLineVersioned(ctx, lineID, 0, map[string]any{
		"status": enums.LineStatusSent,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	line, err = repo.FindLine(ctx, lineID)
	require.NoError(t, err)
	assert.Equal(t, enums.LineStatusReady, line.Status)
}

func TestRepoUpdateOrderVersionedConflict(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedOrder(t, db, enums.OrderStatusPreparing, time.Now().UTC())

	require.NoError(t, repo.UpdateOrderVersioned(ctx, seeded.ID, 0, map[string]any{
		"status": enums.OrderStatusReadyForDelivery,
	}))
	err := repo.UpdateOrderVersioned(ctx, seeded.ID, 0, map[string]any{
		"status": enums.OrderStatusCancelled,
	})
	assert.ErrorIs(t, err, ErrVersionConflict)

	order, err := repo.FindOrder(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusReadyForDelivery, order.Status)
	assert.Equal(t, 1, order.Version)
}

func TestRepoListOrdersCursorPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	customerID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		order := seedOrder(t, db, enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute), enums.LineStatusPending)
		require.NoError(t, db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("customer_user_id", customerID).Error)
	}

	filters := OrderFilters{CustomerUserID: &customerID}
	page, err := repo.ListOrders(ctx, pagination.Params{Limit: 2}, filters)
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	require.NotEmpty(t, page.NextCursor)
	assert.True(t, page.Orders[0].CreatedAt.After(page.Orders[1].CreatedAt))

	rest, err := repo.ListOrders(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor}, filters)
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)
	assert.Equal(t, 1, rest.Orders[0].LineCount)
	assert.False(t, rest.Orders[0].Sendable)
}

func TestRepoListOrdersGymScope(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	inScope := seedOrder(t, db, enums.OrderStatusInTransit, time.Now().UTC(), enums.LineStatusSent)
	seedOrder(t, db, enums.OrderStatusInTransit, time.Now().UTC(), enums.LineStatusSent)

	page, err := repo.ListOrders(ctx, pagination.Params{}, OrderFilters{
		PickupGymIDs: []uuid.UUID{*inScope.PickupGymID},
	})
	require.NoError(t, err)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, inScope.ID, page.Orders[0].ID)
	assert.True(t, page.Orders[0].Sendable)
}

func TestRepoFindPendingOrdersBefore(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	stale := seedOrder(t, db, enums.OrderStatusPending, now.Add(-11*24*time.Hour))
	seedOrder(t, db, enums.OrderStatusPending, now.Add(-time.Hour))
	seedOrder(t, db, enums.OrderStatusPreparing, now.Add(-11*24*time.Hour))

	rows, err := repo.FindPendingOrdersBefore(ctx, now.Add(-10*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, stale.ID, rows[0].ID)
}

func mustFirstLineID(t *testing.T, db *gorm.DB, orderID uuid.UUID) uuid.UUID {
	t.Helper()
	var line models.OrderLine
	require.NoError(t, db.Where("order_id = ?", orderID).First(&line).Error)
	return line.ID
}
