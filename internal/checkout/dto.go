package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/types"
)

// LineInput is one product snapshot submitted at checkout. Prices arrive in
// minor units and are frozen onto the line as-is.
type LineInput struct {
	ProductID      *uuid.UUID        `json:"product_id" validate:"omitempty"`
	Name           string            `json:"name" validate:"required,max=200"`
	Species        string            `json:"species" validate:"required,max=60"`
	Part           string            `json:"part" validate:"required,max=60"`
	UnitLabel      string            `json:"unit_label" validate:"required,max=60"`
	UnitPriceCents int               `json:"unit_price_cents" validate:"gte=0"`
	Qty            int               `json:"qty" validate:"gt=0"`
	Options        types.LineOptions `json:"options" validate:"omitempty,dive"`
}

// CheckoutInput is the validated checkout payload.
type CheckoutInput struct {
	CustomerUserID    uuid.UUID   `json:"-"`
	PickupGymID       uuid.UUID   `json:"pickup_gym_id" validate:"required"`
	RequestedPickupAt *time.Time  `json:"requested_pickup_at" validate:"omitempty"`
	Note              string      `json:"note" validate:"max=500"`
	Lines             []LineInput `json:"lines" validate:"required,min=1,dive"`
}
