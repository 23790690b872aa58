package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// FulfillmentMetrics counts order workflow activity.
type FulfillmentMetrics struct {
	lineTransitions  *prometheus.CounterVec
	orderTransitions *prometheus.CounterVec
	rejected         *prometheus.CounterVec
	settlements      *prometheus.CounterVec
}

// NewFulfillmentMetrics registers the fulfillment counters on the provided registerer.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	lineTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_line_transitions_total",
		Help: "Applied order line state transitions.",
	}, []string{"to"})
	orderTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Applied order state transitions.",
	}, []string{"to"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "transition_rejected_total",
		Help: "State transitions rejected by the state machine.",
	}, []string{"kind"})
	settlements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "settlements_created_total",
		Help: "Settlement batches created.",
	}, []string{"kind"})
	reg.MustRegister(lineTransitions, orderTransitions, rejected, settlements)
	return &FulfillmentMetrics{
		lineTransitions:  lineTransitions,
		orderTransitions: orderTransitions,
		rejected:         rejected,
		settlements:      settlements,
	}
}

// IncLineTransition counts a successful line transition into the given state.
func (f *FulfillmentMetrics) IncLineTransition(to enums.LineStatus) {
	if f == nil || f.lineTransitions == nil {
		return
	}
	f.lineTransitions.WithLabelValues(to.String()).Inc()
}

// IncOrderTransition counts a successful order transition into the given state.
func (f *FulfillmentMetrics) IncOrderTransition(to enums.OrderStatus) {
	if f == nil || f.orderTransitions == nil {
		return
	}
	f.orderTransitions.WithLabelValues(to.String()).Inc()
}

// IncRejected counts a transition the state machine refused.
func (f *FulfillmentMetrics) IncRejected(kind string) {
	if f == nil || f.rejected == nil {
		return
	}
	f.rejected.WithLabelValues(normalizeLabel(kind)).Inc()
}

// IncSettlement counts a created settlement batch.
func (f *FulfillmentMetrics) IncSettlement(kind enums.SettlementKind) {
	if f == nil || f.settlements == nil {
		return
	}
	f.settlements.WithLabelValues(kind.String()).Inc()
}
