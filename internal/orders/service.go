package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/metrics"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox/payloads"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// GymAuthority answers which pickup locations an actor administers.
type GymAuthority interface {
	AdministersGym(ctx context.Context, userID, gymID uuid.UUID) (bool, error)
	GymsAdministeredBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Viewer identifies the authenticated actor for scoped reads.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// Service defines the fulfillment operations on orders and their lines.
type Service interface {
	SetLineState(ctx context.Context, input SetLineStateInput) (*OrderDetail, error)
	SetOrderStateButcher(ctx context.Context, input SetOrderStateInput) (*OrderDetail, error)
	SetOrderStateGym(ctx context.Context, input SetOrderStateInput) (*OrderDetail, error)
	GetOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDetail, error)
	GetOrderByShortCode(ctx context.Context, viewer Viewer, shortCode int64) (*OrderDetail, error)
	ListOrders(ctx context.Context, viewer Viewer, params pagination.Params, filters OrderFilters) (*OrderList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	gyms    GymAuthority
	metrics *metrics.FulfillmentMetrics
}

// NewService builds an orders service with the required dependencies.
// Metrics may be nil outside the API process.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, gyms GymAuthority, fm *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gyms == nil {
		return nil, fmt.Errorf("gym authority required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outbox,
		gyms:    gyms,
		metrics: fm,
	}, nil
}

// lineEditable reports whether the parent order still sits in the butcher's
// window. Once a gym has taken receipt, lines are frozen.
func lineEditable(status enums.OrderStatus) bool {
	switch status {
	case enums.OrderStatusPending, enums.OrderStatusPreparing,
		enums.OrderStatusReadyForDelivery, enums.OrderStatusInTransit:
		return true
	default:
		return false
	}
}

func (s *service) SetLineState(ctx context.Context, input SetLineStateInput) (*OrderDetail, error) {
	if input.LineID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line id required")
	}
	if !input.TargetState.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target state")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.ActorRoleButcher && input.ActorRole != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only butchers can transition lines")
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLine(ctx, input.LineID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line")
		}
		order, err := repo.FindOrder(ctx, line.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if !lineEditable(order.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is no longer editable")
		}
		if !CanTransitionLine(line.Status, input.TargetState) {
			s.metrics.IncRejected("line")
			return rejectLine(line.Status, input.TargetState)
		}

		// SENT is an order-wide barrier: every sibling must already be READY
		// or SENT before the last line closes the gate.
		if input.TargetState == enums.LineStatusSent {
			for _, sibling := range order.Lines {
				if sibling.ID == line.ID {
					continue
				}
				if sibling.Status != enums.LineStatusReady && sibling.Status != enums.LineStatusSent {
					s.metrics.IncRejected("line")
					return pkgerrors.New(pkgerrors.CodeStateConflict, "all lines must be ready before sending out").
						WithDetails(TransitionRejection{
							CurrentState:   line.Status.String(),
							RequestedState: input.TargetState.String(),
							AllowedNext:    lineStatusStrings(AllowedNextLine(line.Status)),
						})
				}
			}
		}

		undoSent := line.Status == enums.LineStatusSent && input.TargetState == enums.LineStatusReady
		if undoSent && order.Status != enums.OrderStatusInTransit {
			s.metrics.IncRejected("line")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sent lines can only be reopened while the order is in transit")
		}

		if err := repo.UpdateLineVersioned(ctx, line.ID, line.Version, map[string]any{
			"status": input.TargetState,
		}); err != nil {
			if errors.Is(err, ErrVersionConflict) {
				return pkgerrors.New(pkgerrors.CodeConflict, "line was modified concurrently")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line status")
		}
		prior := line.Status
		line.Status = input.TargetState
		for i := range order.Lines {
			if order.Lines[i].ID == line.ID {
				order.Lines[i].Status = input.TargetState
			}
		}
		s.metrics.IncLineTransition(input.TargetState)

		actor := buildActor(input.ActorUserID, nil, input.ActorRole)

		// Order-level consequences of the line change.
		switch {
		case input.TargetState == enums.LineStatusPreparing &&
			prior == enums.LineStatusPending &&
			order.Status == enums.OrderStatusPending:
			if err := s.promoteOrder(ctx, tx, repo, order, enums.OrderStatusPreparing, actor, nil); err != nil {
				return err
			}

		case input.TargetState == enums.LineStatusSent && allSent(order.Lines):
			if err := s.promoteOrder(ctx, tx, repo, order, enums.OrderStatusInTransit, actor, nil); err != nil {
				return err
			}

		case undoSent && order.Status == enums.OrderStatusInTransit:
			// Reopening a sent line means the order is no longer fully sent.
			if err := s.promoteOrder(ctx, tx, repo, order, enums.OrderStatusPreparing, actor, nil); err != nil {
				return err
			}
		}

		detail = BuildDetail(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

func (s *service) SetOrderStateButcher(ctx context.Context, input SetOrderStateInput) (*OrderDetail, error) {
	return s.setOrderState(ctx, input, enums.ActorRoleButcher, nil)
}

func (s *service) SetOrderStateGym(ctx context.Context, input SetOrderStateInput) (*OrderDetail, error) {
	return s.setOrderState(ctx, input, enums.ActorRoleGymStaff, func(ctx context.Context, order *OrderDetail) error {
		if order.PickupGymID == nil {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order has no pickup location")
		}
		if input.ActorRole == enums.ActorRoleAdmin {
			return nil
		}
		ok, err := s.gyms.AdministersGym(ctx, input.ActorUserID, *order.PickupGymID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gym membership")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	})
}

type orderAuthz func(ctx context.Context, order *OrderDetail) error

func (s *service) setOrderState(ctx context.Context, input SetOrderStateInput, domain enums.ActorRole, authorize orderAuthz) (*OrderDetail, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.TargetState.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target state")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	if input.ActorRole != domain && input.ActorRole != enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot transition orders in this domain")
	}
	role := input.ActorRole
	if role != enums.ActorRoleAdmin {
		role = domain
	}

	var detail *OrderDetail
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if authorize != nil {
			if err := authorize(ctx, BuildDetail(order)); err != nil {
				return err
			}
		}

		if !CanTransitionOrder(order.Status, input.TargetState, role) {
			s.metrics.IncRejected("order")
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid order transition").
				WithDetails(TransitionRejection{
					CurrentState:   order.Status.String(),
					RequestedState: input.TargetState.String(),
					AllowedNext:    orderStatusStrings(AllowedNextOrder(order.Status, role)),
				})
		}

		var gymID *uuid.UUID
		if order.PickupGymID != nil {
			id := *order.PickupGymID
			gymID = &id
		}
		actor := buildActor(input.ActorUserID, gymID, input.ActorRole)
		if err := s.promoteOrder(ctx, tx, repo, order, input.TargetState, actor, nil); err != nil {
			return err
		}

		detail = BuildDetail(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return detail, nil
}

// promoteOrder applies the order status change with optimistic locking,
// stamps lifecycle timestamps, and queues the matching outbox event.
func (s *service) promoteOrder(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, target enums.OrderStatus, actor *outbox.ActorRef, now *time.Time) error {
	at := time.Now()
	if now != nil {
		at = *now
	}

	updates := map[string]any{"status": target}
	switch target {
	case enums.OrderStatusAtGym:
		updates["arrived_at"] = at
	case enums.OrderStatusPickedUp:
		updates["picked_up_at"] = at
	case enums.OrderStatusCancelled:
		updates["canceled_at"] = at
	}

	if err := repo.UpdateOrderVersioned(ctx, order.ID, order.Version, updates); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order was modified concurrently")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	from := order.Status
	order.Status = target
	order.Version++
	switch target {
	case enums.OrderStatusAtGym:
		order.ArrivedAt = &at
	case enums.OrderStatusPickedUp:
		order.PickedUpAt = &at
	case enums.OrderStatusCancelled:
		order.CanceledAt = &at
	}
	s.metrics.IncOrderTransition(target)

	event, ok := orderEvent(order, from, target, at)
	if !ok {
		return nil
	}
	event.Actor = actor
	return s.outbox.Emit(ctx, tx, event)
}

func orderEvent(order *models.Order, from, to enums.OrderStatus, at time.Time) (outbox.DomainEvent, bool) {
	base := outbox.DomainEvent{
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		OccurredAt:    at,
	}
	switch to {
	case enums.OrderStatusPreparing:
		base.EventType = enums.EventOrderPreparing
		base.Data = payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			ShortCode:   order.ShortCode,
			PickupGymID: order.PickupGymID,
			From:        from,
			To:          to,
		}
	case enums.OrderStatusInTransit:
		base.EventType = enums.EventOrderInTransit
		base.Data = payloads.OrderStatusChangedEvent{
			OrderID:     order.ID,
			ShortCode:   order.ShortCode,
			PickupGymID: order.PickupGymID,
			From:        from,
			To:          to,
		}
	case enums.OrderStatusAtGym:
		base.EventType = enums.EventOrderArrived
		base.Data = payloads.OrderArrivedEvent{
			OrderID:        order.ID,
			ShortCode:      order.ShortCode,
			CustomerUserID: order.CustomerUserID,
			PickupGymID:    order.PickupGymID,
			ArrivedAt:      at,
		}
	case enums.OrderStatusPickedUp:
		base.EventType = enums.EventOrderPickedUp
		base.Data = payloads.OrderPickedUpEvent{
			OrderID:     order.ID,
			ShortCode:   order.ShortCode,
			PickupGymID: order.PickupGymID,
			PickedUpAt:  at,
		}
	case enums.OrderStatusCancelled:
		base.EventType = enums.EventOrderCancelled
		base.Data = payloads.OrderCancelledEvent{
			OrderID:     order.ID,
			ShortCode:   order.ShortCode,
			PickupGymID: order.PickupGymID,
			CanceledAt:  at,
		}
	default:
		return outbox.DomainEvent{}, false
	}
	return base, true
}

func (s *service) GetOrder(ctx context.Context, viewer Viewer, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.authorizeView(ctx, viewer, order); err != nil {
		return nil, err
	}
	return BuildDetail(order), nil
}

// GetOrderByShortCode resolves the code a customer reads out at the pickup
// desk. The short-code lookup skips the line preload, so lines are loaded
// separately before building the projection.
func (s *service) GetOrderByShortCode(ctx context.Context, viewer Viewer, shortCode int64) (*OrderDetail, error) {
	if shortCode <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "short code required")
	}
	order, err := s.repo.FindOrderByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	lines, err := s.repo.FindLinesByOrder(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
	}
	order.Lines = lines
	if err := s.authorizeView(ctx, viewer, order); err != nil {
		return nil, err
	}
	return BuildDetail(order), nil
}

func (s *service) ListOrders(ctx context.Context, viewer Viewer, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	switch viewer.Role {
	case enums.ActorRoleCustomer:
		id := viewer.UserID
		filters.CustomerUserID = &id
		filters.PickupGymIDs = nil
	case enums.ActorRoleGymStaff:
		gymIDs, err := s.gyms.GymsAdministeredBy(ctx, viewer.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gym scope")
		}
		if len(gymIDs) == 0 {
			return &OrderList{Orders: []OrderSummary{}}, nil
		}
		filters.PickupGymIDs = gymIDs
	case enums.ActorRoleButcher, enums.ActorRoleAdmin:
		// unscoped
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list orders")
	}

	list, err := s.repo.ListOrders(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

// authorizeView hides cross-tenant rows as NotFound.
func (s *service) authorizeView(ctx context.Context, viewer Viewer, order *models.Order) error {
	switch viewer.Role {
	case enums.ActorRoleButcher, enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleCustomer:
		if order.CustomerUserID == viewer.UserID {
			return nil
		}
	case enums.ActorRoleGymStaff:
		if order.PickupGymID != nil {
			ok, err := s.gyms.AdministersGym(ctx, viewer.UserID, *order.PickupGymID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gym membership")
			}
			if ok {
				return nil
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func rejectLine(current, requested enums.LineStatus) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid line transition").
		WithDetails(TransitionRejection{
			CurrentState:   current.String(),
			RequestedState: requested.String(),
			AllowedNext:    lineStatusStrings(AllowedNextLine(current)),
		})
}

func allSent(lines []models.OrderLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if line.Status != enums.LineStatusSent {
			return false
		}
	}
	return true
}

func buildActor(userID uuid.UUID, gymID *uuid.UUID, role enums.ActorRole) *outbox.ActorRef {
	return &outbox.ActorRef{
		UserID: userID,
		GymID:  gymID,
		Role:   role.String(),
	}
}

// BuildDetail maps a loaded order row onto its response projection.
func BuildDetail(order *models.Order) *OrderDetail {
	lines := make([]LineSummary, len(order.Lines))
	statuses := make([]enums.LineStatus, len(order.Lines))
	for i, line := range order.Lines {
		statuses[i] = line.Status
		lines[i] = LineSummary{
			ID:             line.ID,
			ProductID:      line.ProductID,
			Name:           line.Name,
			Species:        line.Species,
			Part:           line.Part,
			UnitLabel:      line.UnitLabel,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			Options:        line.Options,
			TotalCents:     line.TotalCents,
			Status:         line.Status,
		}
	}
	return &OrderDetail{
		ID:                  order.ID,
		ShortCode:           order.ShortCode,
		CustomerUserID:      order.CustomerUserID,
		Status:              order.Status,
		SubtotalCents:       order.SubtotalCents,
		TotalCents:          order.TotalCents,
		PickupGymID:         order.PickupGymID,
		RequestedPickupAt:   order.RequestedPickupAt,
		Note:                order.Note,
		Sendable:            Sendable(statuses),
		ArrivedAt:           order.ArrivedAt,
		PickedUpAt:          order.PickedUpAt,
		CanceledAt:          order.CanceledAt,
		GymSettlementID:     order.GymSettlementID,
		ButcherSettlementID: order.ButcherSettlementID,
		Lines:               lines,
		CreatedAt:           order.CreatedAt,
	}
}

func lineStatusStrings(statuses []enums.LineStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = status.String()
	}
	return out
}

func orderStatusStrings(statuses []enums.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, status := range statuses {
		out[i] = status.String()
	}
	return out
}
