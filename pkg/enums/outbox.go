package enums

// OutboxEventType names a domain event stored in the outbox table.
type OutboxEventType string

const (
	EventOrderCreated   OutboxEventType = "order.created"
	EventOrderPreparing OutboxEventType = "order.preparing"
	EventOrderInTransit OutboxEventType = "order.in_transit"
	EventOrderArrived   OutboxEventType = "order.arrived"
	EventOrderPickedUp  OutboxEventType = "order.picked_up"
	EventOrderCancelled OutboxEventType = "order.cancelled"
	EventOrderExpired   OutboxEventType = "order.expired"
	EventSettlementCreated OutboxEventType = "settlement.created"
)

// OutboxAggregateType names the aggregate an outbox event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder      OutboxAggregateType = "order"
	AggregateSettlement OutboxAggregateType = "settlement"
)
