package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/types"
)

// OrderFilters describe the inputs supported by the orders list.
type OrderFilters struct {
	Status         *enums.OrderStatus
	CustomerUserID *uuid.UUID
	PickupGymIDs   []uuid.UUID
	DateFrom       *time.Time
	DateTo         *time.Time
}

// LineSummary exposes one line of an order with its fulfillment state.
type LineSummary struct {
	ID             uuid.UUID         `json:"id"`
	ProductID      *uuid.UUID        `json:"product_id,omitempty"`
	Name           string            `json:"name"`
	Species        string            `json:"species"`
	Part           string            `json:"part"`
	UnitLabel      string            `json:"unit_label"`
	UnitPriceCents int               `json:"unit_price_cents"`
	Qty            int               `json:"qty"`
	Options        types.LineOptions `json:"options,omitempty"`
	TotalCents     int               `json:"total_cents"`
	Status         enums.LineStatus  `json:"status"`
}

// OrderSummary is the list-level projection of an order.
type OrderSummary struct {
	ID          uuid.UUID         `json:"id"`
	ShortCode   int64             `json:"short_code"`
	Status      enums.OrderStatus `json:"status"`
	TotalCents  int               `json:"total_cents"`
	PickupGymID *uuid.UUID        `json:"pickup_gym_id,omitempty"`
	LineCount   int               `json:"line_count"`
	Sendable    bool              `json:"sendable"`
	CreatedAt   time.Time         `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail is the full projection returned by state-change endpoints and
// the detail read.
type OrderDetail struct {
	ID                  uuid.UUID         `json:"id"`
	ShortCode           int64             `json:"short_code"`
	CustomerUserID      uuid.UUID         `json:"customer_user_id"`
	Status              enums.OrderStatus `json:"status"`
	SubtotalCents       int               `json:"subtotal_cents"`
	TotalCents          int               `json:"total_cents"`
	PickupGymID         *uuid.UUID        `json:"pickup_gym_id,omitempty"`
	RequestedPickupAt   *time.Time        `json:"requested_pickup_at,omitempty"`
	Note                string            `json:"note,omitempty"`
	Sendable            bool              `json:"sendable"`
	ArrivedAt           *time.Time        `json:"arrived_at,omitempty"`
	PickedUpAt          *time.Time        `json:"picked_up_at,omitempty"`
	CanceledAt          *time.Time        `json:"canceled_at,omitempty"`
	GymSettlementID     *uuid.UUID        `json:"gym_settlement_id,omitempty"`
	ButcherSettlementID *uuid.UUID        `json:"butcher_settlement_id,omitempty"`
	Lines               []LineSummary     `json:"lines"`
	CreatedAt           time.Time         `json:"created_at"`
}

// TransitionRejection is attached as error details when a transition is
// refused, so clients can correct themselves.
type TransitionRejection struct {
	CurrentState   string   `json:"current_state"`
	RequestedState string   `json:"requested_state"`
	AllowedNext    []string `json:"allowed_next"`
}

// SetLineStateInput carries a butcher's line transition request.
type SetLineStateInput struct {
	LineID      uuid.UUID
	TargetState enums.LineStatus
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}

// SetOrderStateInput carries an order transition request for either domain.
type SetOrderStateInput struct {
	OrderID     uuid.UUID
	TargetState enums.OrderStatus
	ActorUserID uuid.UUID
	ActorRole   enums.ActorRole
}
