package orders

import (
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// lineTransitions is the single-step line fulfillment table. No state may
// transition to itself and no multi-hop jumps are permitted.
var lineTransitions = map[enums.LineStatus][]enums.LineStatus{
	enums.LineStatusPending:   {enums.LineStatusPreparing},
	enums.LineStatusPreparing: {enums.LineStatusReady, enums.LineStatusPending},
	enums.LineStatusReady:     {enums.LineStatusPreparing, enums.LineStatusSent},
	enums.LineStatusSent:      {enums.LineStatusReady},
}

// orderTransitions is the authoritative order lifecycle table. Each edge is
// annotated with the actor role allowed to drive it; butcher and gym staff
// each own a disjoint window of the lifecycle.
var orderTransitions = map[enums.OrderStatus]map[enums.OrderStatus]enums.ActorRole{
	enums.OrderStatusPending: {
		enums.OrderStatusPreparing: enums.ActorRoleButcher,
	},
	enums.OrderStatusPreparing: {
		enums.OrderStatusReadyForDelivery: enums.ActorRoleButcher,
		enums.OrderStatusCancelled:        enums.ActorRoleButcher,
	},
	enums.OrderStatusReadyForDelivery: {
		enums.OrderStatusInTransit: enums.ActorRoleButcher,
		enums.OrderStatusCancelled: enums.ActorRoleButcher,
	},
	enums.OrderStatusInTransit: {
		enums.OrderStatusAtGym: enums.ActorRoleGymStaff,
	},
	enums.OrderStatusAtGym: {
		enums.OrderStatusPickedUp:  enums.ActorRoleGymStaff,
		enums.OrderStatusCancelled: enums.ActorRoleGymStaff,
	},
	// PICKED_UP and CANCELLED are terminal.
}

// AllowedNextLine returns the valid next states for a line in the given state.
func AllowedNextLine(current enums.LineStatus) []enums.LineStatus {
	next := lineTransitions[current]
	out := make([]enums.LineStatus, len(next))
	copy(out, next)
	return out
}

// CanTransitionLine reports whether the line table permits from -> to.
func CanTransitionLine(from, to enums.LineStatus) bool {
	for _, candidate := range lineTransitions[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// AllowedNextOrder returns the next states the given role may drive from the
// current state. Admins may drive every edge.
func AllowedNextOrder(current enums.OrderStatus, role enums.ActorRole) []enums.OrderStatus {
	out := []enums.OrderStatus{}
	for to, owner := range orderTransitions[current] {
		if role == enums.ActorRoleAdmin || owner == role {
			out = append(out, to)
		}
	}
	sortOrderStatuses(out)
	return out
}

// CanTransitionOrder reports whether the order table permits from -> to for
// the given actor role.
func CanTransitionOrder(from, to enums.OrderStatus, role enums.ActorRole) bool {
	owner, ok := orderTransitions[from][to]
	if !ok {
		return false
	}
	return role == enums.ActorRoleAdmin || owner == role
}

// Sendable reports whether every line is READY or SENT. Derived on demand,
// never persisted.
func Sendable(lines []enums.LineStatus) bool {
	if len(lines) == 0 {
		return false
	}
	for _, status := range lines {
		if status != enums.LineStatusReady && status != enums.LineStatusSent {
			return false
		}
	}
	return true
}

// map iteration order is random; rejection details need a stable order.
func sortOrderStatuses(statuses []enums.OrderStatus) {
	rank := map[enums.OrderStatus]int{
		enums.OrderStatusPending:          0,
		enums.OrderStatusPreparing:        1,
		enums.OrderStatusReadyForDelivery: 2,
		enums.OrderStatusInTransit:        3,
		enums.OrderStatusAtGym:            4,
		enums.OrderStatusPickedUp:         5,
		enums.OrderStatusCancelled:        6,
	}
	for i := 1; i < len(statuses); i++ {
		for j := i; j > 0 && rank[statuses[j]] < rank[statuses[j-1]]; j-- {
			statuses[j], statuses[j-1] = statuses[j-1], statuses[j]
		}
	}
}
