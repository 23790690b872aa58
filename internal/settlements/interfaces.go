package settlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

// ClaimedOrder is one order row captured by the settlement claim.
type ClaimedOrder struct {
	ID         uuid.UUID
	ShortCode  int64
	TotalCents int
}

// Repository defines persistence operations for settlement batches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateSettlement(ctx context.Context, settlement *models.Settlement) (*models.Settlement, error)
	StampTotals(ctx context.Context, settlementID uuid.UUID, orderCount, totalCents int) error
	// ClaimEligible stamps every currently-eligible order with the settlement
	// id in a single conditional update and returns the claimed rows.
	ClaimEligible(ctx context.Context, kind enums.SettlementKind, settlementID uuid.UUID, gymID *uuid.UUID) ([]ClaimedOrder, error)
	PreviewEligible(ctx context.Context, kind enums.SettlementKind, gymID *uuid.UUID) ([]ClaimedOrder, error)
	FindSettlement(ctx context.Context, settlementID uuid.UUID) (*models.Settlement, error)
	ListSettlements(ctx context.Context, kind enums.SettlementKind, gymIDs []uuid.UUID, params pagination.Params) ([]models.Settlement, string, error)
}
