package settlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a settlements repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSettlement(ctx context.Context, settlement *models.Settlement) (*models.Settlement, error) {
	if err := r.db.WithContext(ctx).Create(settlement).Error; err != nil {
		return nil, err
	}
	return settlement, nil
}

func (r *repository) StampTotals(ctx context.Context, settlementID uuid.UUID, orderCount, totalCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Settlement{}).
		Where("id = ?", settlementID).
		Updates(map[string]any{
			"order_count": orderCount,
			"total_cents": totalCents,
		}).Error
}

// ClaimEligible runs eligibility check and stamp as one conditional UPDATE,
// so two racing settle requests can never claim the same order twice.
func (r *repository) ClaimEligible(ctx context.Context, kind enums.SettlementKind, settlementID uuid.UUID, gymID *uuid.UUID) ([]ClaimedOrder, error) {
	var claimed []ClaimedOrder
	var err error
	switch kind {
	case enums.SettlementKindGym:
		err = r.db.WithContext(ctx).Raw(`
UPDATE orders
SET gym_settlement_id = ?, version = version + 1
WHERE status = ?
  AND gym_settlement_id IS NULL
  AND pickup_gym_id = ?
RETURNING id, short_code, total_cents`,
			settlementID, enums.OrderStatusPickedUp, gymID).
			Scan(&claimed).Error
	case enums.SettlementKindButcher:
		err = r.db.WithContext(ctx).Raw(`
UPDATE orders
SET butcher_settlement_id = ?, version = version + 1
WHERE status = ?
  AND gym_settlement_id IS NOT NULL
  AND butcher_settlement_id IS NULL
RETURNING id, short_code, total_cents`,
			settlementID, enums.OrderStatusPickedUp).
			Scan(&claimed).Error
	}
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (r *repository) PreviewEligible(ctx context.Context, kind enums.SettlementKind, gymID *uuid.UUID) ([]ClaimedOrder, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("id", "short_code", "total_cents").
		Where("status = ?", enums.OrderStatusPickedUp).
		Order("created_at ASC")

	switch kind {
	case enums.SettlementKindGym:
		query = query.
			Where("gym_settlement_id IS NULL").
			Where("pickup_gym_id = ?", gymID)
	case enums.SettlementKindButcher:
		query = query.
			Where("gym_settlement_id IS NOT NULL").
			Where("butcher_settlement_id IS NULL")
	}

	var rows []ClaimedOrder
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindSettlement(ctx context.Context, settlementID uuid.UUID) (*models.Settlement, error) {
	var settlement models.Settlement
	err := r.db.WithContext(ctx).
		Where("id = ?", settlementID).
		First(&settlement).Error
	if err != nil {
		return nil, err
	}
	return &settlement, nil
}

func (r *repository) ListSettlements(ctx context.Context, kind enums.SettlementKind, gymIDs []uuid.UUID, params pagination.Params) ([]models.Settlement, string, error) {
	limit := pagination.LimitWithBuffer(params.Limit)

	query := r.db.WithContext(ctx).
		Model(&models.Settlement{}).
		Where("kind = ?", kind)
	if len(gymIDs) > 0 {
		query = query.Where("gym_id IN ?", gymIDs)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Settlement
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return rows, next, nil
}
