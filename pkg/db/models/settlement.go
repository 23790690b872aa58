package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// Settlement is an immutable reconciliation batch. Count and total are frozen
// at creation and never recomputed from live order state.
type Settlement struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Kind            enums.SettlementKind `gorm:"column:kind;type:settlement_kind;not null"`
	GymID           *uuid.UUID           `gorm:"column:gym_id;type:uuid"`
	CreatedByUserID uuid.UUID            `gorm:"column:created_by_user_id;type:uuid;not null"`
	OrderCount      int                  `gorm:"column:order_count;not null"`
	TotalCents      int                  `gorm:"column:total_cents;not null"`
	Notes           *string              `gorm:"column:notes"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
}
