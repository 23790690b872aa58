package settlements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// CreateInput carries a settle request for either domain.
type CreateInput struct {
	Kind        enums.SettlementKind
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
	GymID       *uuid.UUID
	Notes       *string
	DryRun      bool
}

// OrderSample is one member order shown in dry-run previews.
type OrderSample struct {
	ID         uuid.UUID `json:"id"`
	ShortCode  int64     `json:"short_code"`
	TotalCents int       `json:"total_cents"`
}

// CreateResult is the outcome of a settle request. A no-op success (nothing
// eligible) carries NothingToSettle=true and no settlement id.
type CreateResult struct {
	SettlementID    *uuid.UUID           `json:"settlement_id,omitempty"`
	Kind            enums.SettlementKind `json:"kind"`
	GymID           *uuid.UUID           `json:"gym_id,omitempty"`
	OrderCount      int                  `json:"order_count"`
	TotalCents      int                  `json:"total_cents"`
	TotalAmount     string               `json:"total_amount"`
	DryRun          bool                 `json:"dry_run"`
	NothingToSettle bool                 `json:"nothing_to_settle"`
	Sample          []OrderSample        `json:"sample,omitempty"`
}

// SettlementDetail is the read projection of a closed batch.
type SettlementDetail struct {
	ID              uuid.UUID            `json:"id"`
	Kind            enums.SettlementKind `json:"kind"`
	GymID           *uuid.UUID           `json:"gym_id,omitempty"`
	CreatedByUserID uuid.UUID            `json:"created_by_user_id"`
	OrderCount      int                  `json:"order_count"`
	TotalCents      int                  `json:"total_cents"`
	TotalAmount     string               `json:"total_amount"`
	Notes           *string              `json:"notes,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
}

// SettlementList wraps a page of settlements.
type SettlementList struct {
	Settlements []SettlementDetail `json:"settlements"`
	NextCursor  string             `json:"next_cursor,omitempty"`
}

// formatAmount renders integer cents as a fixed two-decimal string. Money
// stays in minor units everywhere else.
func formatAmount(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}
