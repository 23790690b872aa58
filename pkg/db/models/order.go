package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// Order represents one purchase event headed for pickup at a partner gym.
type Order struct {
	ID                  uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShortCode           int64             `gorm:"column:short_code;not null;uniqueIndex:ux_orders_short_code"`
	CustomerUserID      uuid.UUID         `gorm:"column:customer_user_id;type:uuid;not null"`
	Status              enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	SubtotalCents       int               `gorm:"column:subtotal_cents;not null"`
	TotalCents          int               `gorm:"column:total_cents;not null"`
	PickupGymID         *uuid.UUID        `gorm:"column:pickup_gym_id;type:uuid"`
	RequestedPickupAt   *time.Time        `gorm:"column:requested_pickup_at"`
	Note                string            `gorm:"column:note;not null;default:''"`
	ArrivedAt           *time.Time        `gorm:"column:arrived_at"`
	PickedUpAt          *time.Time        `gorm:"column:picked_up_at"`
	CanceledAt          *time.Time        `gorm:"column:canceled_at"`
	GymSettlementID     *uuid.UUID        `gorm:"column:gym_settlement_id;type:uuid"`
	ButcherSettlementID *uuid.UUID        `gorm:"column:butcher_settlement_id;type:uuid"`
	Version             int               `gorm:"column:version;not null;default:0"`
	Lines               []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
