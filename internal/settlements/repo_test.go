package settlements

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
)

func setupSettlementsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// One database per test: the butcher claim is deliberately unscoped, so
	// rows leaking between tests would change its result.
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
	settlements := `
CREATE TABLE IF NOT EXISTS settlements (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  gym_id TEXT,
  created_by_user_id TEXT NOT NULL,
  order_count INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(settlements).Error)
	return db
}

func seedPickedUpOrder(t *testing.T, db *gorm.DB, gymID uuid.UUID, totalCents int, gymSettled *uuid.UUID) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		ShortCode:       time.Now().UnixNano() % 1_000_000_000,
		CustomerUserID:  uuid.New(),
		Status:          enums.OrderStatusPickedUp,
		SubtotalCents:   totalCents,
		TotalCents:      totalCents,
		PickupGymID:     &gymID,
		GymSettlementID: gymSettled,
		CreatedAt:       time.Now().UTC(),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepoClaimEligibleGym(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gymID := uuid.New()
	otherGym := uuid.New()
	eligible := seedPickedUpOrder(t, db, gymID, 5900, nil)
	seedPickedUpOrder(t, db, otherGym, 2100, nil)
	already := uuid.New()
	seedPickedUpOrder(t, db, gymID, 900, &already)

	settlementID := uuid.New()
	claimed, err := repo.ClaimEligible(ctx, enums.SettlementKindGym, settlementID, &gymID)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, eligible.ID, claimed[0].ID)
	assert.Equal(t, 5900, claimed[0].TotalCents)

	var updated models.Order
	require.NoError(t, db.Where("id = ?", eligible.ID).First(&updated).Error)
	require.NotNil(t, updated.GymSettlementID)
	assert.Equal(t, settlementID, *updated.GymSettlementID)
	assert.Equal(t, 1, updated.Version)
}

func TestRepoClaimEligibleIsNotRepeatable(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gymID := uuid.New()
	seedPickedUpOrder(t, db, gymID, 5900, nil)

	first, err := repo.ClaimEligible(ctx, enums.SettlementKindGym, uuid.New(), &gymID)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// The same order must never land in a second batch of the same kind.
	second, err := repo.ClaimEligible(ctx, enums.SettlementKindGym, uuid.New(), &gymID)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestRepoClaimEligibleButcherRequiresGymSettlement(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gymID := uuid.New()
	gymSettlement := uuid.New()
	settled := seedPickedUpOrder(t, db, gymID, 5900, &gymSettlement)
	seedPickedUpOrder(t, db, gymID, 2100, nil)

	claimed, err := repo.ClaimEligible(ctx, enums.SettlementKindButcher, uuid.New(), nil)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, settled.ID, claimed[0].ID)
}

func TestRepoPreviewEligibleDoesNotStamp(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	gymID := uuid.New()
	order := seedPickedUpOrder(t, db, gymID, 5900, nil)

	rows, err := repo.PreviewEligible(ctx, enums.SettlementKindGym, &gymID)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var reloaded models.Order
	require.NoError(t, db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Nil(t, reloaded.GymSettlementID)
}

func TestRepoStampTotals(t *testing.T) {
	db := setupSettlementsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	settlement, err := repo.CreateSettlement(ctx, &models.Settlement{
		ID:              uuid.New(),
		Kind:            enums.SettlementKindGym,
		CreatedByUserID: uuid.New(),
	})
	require.NoError(t, err)

	require.NoError(t, repo.StampTotals(ctx, settlement.ID, 3, 12_000))

	reloaded, err := repo.FindSettlement(ctx, settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.OrderCount)
	assert.Equal(t, 12_000, reloaded.TotalCents)
}
