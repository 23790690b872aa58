package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// OrderCreatedEvent signals a new checkout landing in the butcher queue.
type OrderCreatedEvent struct {
	OrderID        uuid.UUID  `json:"order_id"`
	ShortCode      int64      `json:"short_code"`
	CustomerUserID uuid.UUID  `json:"customer_user_id"`
	PickupGymID    *uuid.UUID `json:"pickup_gym_id,omitempty"`
	TotalCents     int        `json:"total_cents"`
	LineCount      int        `json:"line_count"`
}

// OrderStatusChangedEvent carries a fulfillment transition on the order.
type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	ShortCode   int64             `json:"short_code"`
	PickupGymID *uuid.UUID        `json:"pickup_gym_id,omitempty"`
	From        enums.OrderStatus `json:"from"`
	To          enums.OrderStatus `json:"to"`
}

// OrderArrivedEvent is emitted when gym staff confirm the delivery.
type OrderArrivedEvent struct {
	OrderID        uuid.UUID  `json:"order_id"`
	ShortCode      int64      `json:"short_code"`
	CustomerUserID uuid.UUID  `json:"customer_user_id"`
	PickupGymID    *uuid.UUID `json:"pickup_gym_id,omitempty"`
	ArrivedAt      time.Time  `json:"arrived_at"`
}

// OrderPickedUpEvent is emitted when the customer collects the order.
type OrderPickedUpEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	ShortCode   int64      `json:"short_code"`
	PickupGymID *uuid.UUID `json:"pickup_gym_id,omitempty"`
	PickedUpAt  time.Time  `json:"picked_up_at"`
}

// OrderCancelledEvent is emitted whenever an order is cancelled before pickup.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID  `json:"order_id"`
	ShortCode   int64      `json:"short_code"`
	PickupGymID *uuid.UUID `json:"pickup_gym_id,omitempty"`
	CanceledAt  time.Time  `json:"canceled_at"`
	Reason      string     `json:"reason,omitempty"`
}

// OrderExpiredEvent describes the payload when stale pending orders expire.
type OrderExpiredEvent struct {
	OrderID   uuid.UUID `json:"orderId"`
	ShortCode int64     `json:"shortCode"`
	ExpiredAt time.Time `json:"expiredAt"`
	TTLHours  *int      `json:"ttlHours,omitempty"`
}

// SettlementCreatedEvent surfaces a finished reconciliation batch.
type SettlementCreatedEvent struct {
	SettlementID uuid.UUID            `json:"settlement_id"`
	Kind         enums.SettlementKind `json:"kind"`
	GymID        *uuid.UUID           `json:"gym_id,omitempty"`
	OrderCount   int                  `json:"order_count"`
	TotalCents   int                  `json:"total_cents"`
}
