package enums

import "fmt"

// OrderStatus tracks the lifecycle of a pickup order.
type OrderStatus string

const (
	OrderStatusPending          OrderStatus = "pending"
	OrderStatusPreparing        OrderStatus = "preparing"
	OrderStatusReadyForDelivery OrderStatus = "ready_for_delivery"
	OrderStatusInTransit        OrderStatus = "in_transit"
	OrderStatusAtGym            OrderStatus = "at_gym"
	OrderStatusPickedUp         OrderStatus = "picked_up"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReadyForDelivery,
	OrderStatusInTransit,
	OrderStatusAtGym,
	OrderStatusPickedUp,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the order can never leave this status.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusPickedUp || o == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
