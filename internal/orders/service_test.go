package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/metrics"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

type stubOrdersRepo struct {
	order          *models.Order
	listResult     *OrderList
	listCalled     bool
	lineUpdates    map[string]any
	orderUpdates   map[string]any
	updateLineErr  error
	updateOrderErr error
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubOrdersRepo) CreateOrderLines(ctx context.Context, lines []models.OrderLine) error {
	panic("not implemented")
}

func (s *stubOrdersRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindOrderByShortCode(ctx context.Context, shortCode int64) (*models.Order, error) {
	if s.order == nil || s.order.ShortCode != shortCode {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order, nil
}

func (s *stubOrdersRepo) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	if s.order == nil {
		return nil, gorm.ErrRecordNotFound
	}
	for i := range s.order.Lines {
		if s.order.Lines[i].ID == lineID {
			line := s.order.Lines[i]
			return &line, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.order.Lines, nil
}

func (s *stubOrdersRepo) ListOrders(ctx context.Context, params pagination.Params, filters OrderFilters) (*OrderList, error) {
	s.listCalled = true
	if s.listResult != nil {
		return s.listResult, nil
	}
	return &OrderList{Orders: []OrderSummary{}}, nil
}

func (s *stubOrdersRepo) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) UpdateLineVersioned(ctx context.Context, lineID uuid.UUID, version int, updates map[string]any) error {
	if s.updateLineErr != nil {
		return s.updateLineErr
	}
	s.lineUpdates = updates
	for i := range s.order.Lines {
		if s.order.Lines[i].ID == lineID {
			if status, ok := updates["status"].(enums.LineStatus); ok {
				s.order.Lines[i].Status = status
			}
			s.order.Lines[i].Version++
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) UpdateOrderVersioned(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) error {
	if s.updateOrderErr != nil {
		return s.updateOrderErr
	}
	s.orderUpdates = updates
	if s.order == nil || s.order.ID != orderID {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubGymAuthority struct {
	administers bool
	gymIDs      []uuid.UUID
}

func (s *stubGymAuthority) AdministersGym(ctx context.Context, userID, gymID uuid.UUID) (bool, error) {
	return s.administers, nil
}

func (s *stubGymAuthority) GymsAdministeredBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return s.gymIDs, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestOrder(status enums.OrderStatus, lineStatuses ...enums.LineStatus) *models.Order {
	gymID := uuid.New()
	order := &models.Order{
		ID:             uuid.New(),
		ShortCode:      100042,
		CustomerUserID: uuid.New(),
		Status:         status,
		PickupGymID:    &gymID,
	}
	for _, ls := range lineStatuses {
		order.Lines = append(order.Lines, models.OrderLine{
			ID:      uuid.New(),
			OrderID: order.ID,
			Name:    "ribeye",
			Qty:     1,
			Status:  ls,
		})
	}
	return order
}

func newTestService(t *testing.T, repo *stubOrdersRepo, pub *stubOutboxPublisher, gyms *stubGymAuthority) Service {
	t.Helper()
	if gyms == nil {
		gyms = &stubGymAuthority{}
	}
	svc, err := NewService(repo, stubTxRunner{}, pub, gyms, nil)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) *pkgerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
	return typed
}

func TestSetLineStateFirstPreparingPromotesOrder(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPending, enums.LineStatusPending, enums.LineStatusPending)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	detail, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusPreparing,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusPreparing {
		t.Fatalf("expected order preparing, got %s", detail.Status)
	}
	if detail.Lines[0].Status != enums.LineStatusPreparing {
		t.Fatalf("expected line preparing, got %s", detail.Lines[0].Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderPreparing {
		t.Fatalf("expected order.preparing event, got %+v", pub.events)
	}
}

func TestSetLineStateSecondPreparingDoesNotReEmit(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPreparing, enums.LineStatusPreparing, enums.LineStatusPending)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[1].ID,
		TargetState: enums.LineStatusPreparing,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
	if repo.order.Status != enums.OrderStatusPreparing {
		t.Fatalf("order status changed to %s", repo.order.Status)
	}
}

func TestSetLineStateSentBarrier(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPreparing,
		enums.LineStatusReady, enums.LineStatusReady, enums.LineStatusPreparing)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusSent,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	typed := expectCode(t, err, pkgerrors.CodeStateConflict)
	rejection, ok := typed.Details().(TransitionRejection)
	if !ok {
		t.Fatalf("expected rejection details, got %T", typed.Details())
	}
	if rejection.CurrentState != "ready" || rejection.RequestedState != "sent" {
		t.Fatalf("unexpected rejection %+v", rejection)
	}
	if repo.order.Lines[0].Status != enums.LineStatusReady {
		t.Fatalf("line mutated to %s", repo.order.Lines[0].Status)
	}
}

func TestSetLineStateLastSentPromotesInTransit(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPreparing,
		enums.LineStatusSent, enums.LineStatusReady)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	detail, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[1].ID,
		TargetState: enums.LineStatusSent,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusInTransit {
		t.Fatalf("expected in_transit, got %s", detail.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderInTransit {
		t.Fatalf("expected order.in_transit event, got %+v", pub.events)
	}
}

func TestSetLineStateUndoSentDemotesOrder(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusInTransit,
		enums.LineStatusSent, enums.LineStatusSent)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	detail, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusReady,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusPreparing {
		t.Fatalf("expected order demoted to preparing, got %s", detail.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderPreparing {
		t.Fatalf("expected order.preparing event, got %+v", pub.events)
	}
}

func TestSetLineStateUndoSentOnlyWhileInTransit(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusReadyForDelivery,
		enums.LineStatusSent, enums.LineStatusReady)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusReady,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
	if repo.order.Lines[0].Status != enums.LineStatusSent {
		t.Fatalf("line mutated to %s", repo.order.Lines[0].Status)
	}
}

func TestSetLineStateFrozenAfterArrival(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusAtGym,
		enums.LineStatusSent, enums.LineStatusSent)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusReady,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSetLineStateInvalidJump(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPending, enums.LineStatusPending)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusReady,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	typed := expectCode(t, err, pkgerrors.CodeStateConflict)
	rejection, ok := typed.Details().(TransitionRejection)
	if !ok {
		t.Fatalf("expected rejection details, got %T", typed.Details())
	}
	if len(rejection.AllowedNext) != 1 || rejection.AllowedNext[0] != "preparing" {
		t.Fatalf("unexpected allowed next %v", rejection.AllowedNext)
	}
}

func TestSetLineStateVersionConflict(t *testing.T) {
	repo := &stubOrdersRepo{
		order:         newTestOrder(enums.OrderStatusPreparing, enums.LineStatusPreparing),
		updateLineErr: ErrVersionConflict,
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusReady,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestSetLineStateRejectsNonButcher(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPending, enums.LineStatusPending)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, nil)

	_, err := svc.SetLineState(context.Background(), SetLineStateInput{
		LineID:      repo.order.Lines[0].ID,
		TargetState: enums.LineStatusPreparing,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleCustomer,
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestButcherOrderTransitionReadyForDelivery(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPreparing,
		enums.LineStatusReady, enums.LineStatusReady)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, nil)

	detail, err := svc.SetOrderStateButcher(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusReadyForDelivery,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusReadyForDelivery {
		t.Fatalf("expected ready_for_delivery, got %s", detail.Status)
	}
	if len(pub.events) != 0 {
		t.Fatalf("unexpected events %+v", pub.events)
	}
}

func TestButcherOrderTransitionRejectsGymEdge(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusInTransit,
		enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, nil)

	_, err := svc.SetOrderStateButcher(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusAtGym,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	typed := expectCode(t, err, pkgerrors.CodeStateConflict)
	rejection, ok := typed.Details().(TransitionRejection)
	if !ok {
		t.Fatalf("expected rejection details, got %T", typed.Details())
	}
	if len(rejection.AllowedNext) != 0 {
		t.Fatalf("butcher should have no edges from in_transit, got %v", rejection.AllowedNext)
	}
}

func TestGymArrivalStampsAndEmits(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusInTransit,
		enums.LineStatusSent, enums.LineStatusSent)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubGymAuthority{administers: true})

	detail, err := svc.SetOrderStateGym(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusAtGym,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleGymStaff,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusAtGym {
		t.Fatalf("expected at_gym, got %s", detail.Status)
	}
	if detail.ArrivedAt == nil {
		t.Fatal("expected arrived_at stamped")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderArrived {
		t.Fatalf("expected order.arrived event, got %+v", pub.events)
	}
	if _, ok := repo.orderUpdates["arrived_at"]; !ok {
		t.Fatal("expected arrived_at in persisted updates")
	}
}

func TestGymTransitionConcealedForOutsider(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusInTransit,
		enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{administers: false})

	_, err := svc.SetOrderStateGym(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusAtGym,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleGymStaff,
	})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGymTransitionRejectsButcherRole(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusInTransit,
		enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{administers: true})

	_, err := svc.SetOrderStateGym(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusAtGym,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleButcher,
	})
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestAdminDrivesGymEdge(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusAtGym,
		enums.LineStatusSent)}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubGymAuthority{administers: false})

	detail, err := svc.SetOrderStateGym(context.Background(), SetOrderStateInput{
		OrderID:     repo.order.ID,
		TargetState: enums.OrderStatusPickedUp,
		ActorUserID: uuid.New(),
		ActorRole:   enums.ActorRoleAdmin,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Status != enums.OrderStatusPickedUp {
		t.Fatalf("expected picked_up, got %s", detail.Status)
	}
	if detail.PickedUpAt == nil {
		t.Fatal("expected picked_up_at stamped")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventOrderPickedUp {
		t.Fatalf("expected order.picked_up event, got %+v", pub.events)
	}
}

func TestGetOrderHidesOtherCustomers(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPending, enums.LineStatusPending)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, nil)

	_, err := svc.GetOrder(context.Background(), Viewer{
		UserID: uuid.New(),
		Role:   enums.ActorRoleCustomer,
	}, repo.order.ID)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetOrderOwnCustomer(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPending, enums.LineStatusPending)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, nil)

	detail, err := svc.GetOrder(context.Background(), Viewer{
		UserID: repo.order.CustomerUserID,
		Role:   enums.ActorRoleCustomer,
	}, repo.order.ID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.Sendable {
		t.Fatal("pending order must not be sendable")
	}
}

func TestListOrdersGymStaffWithoutGyms(t *testing.T) {
	repo := &stubOrdersRepo{}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{})

	list, err := svc.ListOrders(context.Background(), Viewer{
		UserID: uuid.New(),
		Role:   enums.ActorRoleGymStaff,
	}, pagination.Params{}, OrderFilters{})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(list.Orders) != 0 {
		t.Fatalf("expected empty list, got %d", len(list.Orders))
	}
	if repo.listCalled {
		t.Fatal("repository should not be queried without gym scope")
	}
}

func TestSetLineStateRejectionsAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	fm := metrics.NewFulfillmentMetrics(reg)
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusPreparing,
		enums.LineStatusReady, enums.LineStatusPreparing, enums.LineStatusSent)}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, &stubGymAuthority{}, fm)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	actor := uuid.New()
	attempts := []struct {
		name   string
		line   int
		target enums.LineStatus
	}{
		{name: "barrier blocks sent while sibling prepares", line: 0, target: enums.LineStatusSent},
		{name: "table blocks preparing to sent", line: 1, target: enums.LineStatusSent},
		{name: "sent reopened outside in transit", line: 2, target: enums.LineStatusReady},
	}
	for _, attempt := range attempts {
		_, err := svc.SetLineState(context.Background(), SetLineStateInput{
			LineID:      repo.order.Lines[attempt.line].ID,
			TargetState: attempt.target,
			ActorUserID: actor,
			ActorRole:   enums.ActorRoleButcher,
		})
		expectCode(t, err, pkgerrors.CodeStateConflict)
	}

	if got := rejectedCount(t, reg, "line"); got != float64(len(attempts)) {
		t.Fatalf("expected %d rejections counted, got %f", len(attempts), got)
	}
}

func rejectedCount(t *testing.T, reg *prometheus.Registry, kind string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "transition_rejected_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "kind" && label.GetValue() == kind {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestGetOrderByShortCodeLoadsLines(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusAtGym,
		enums.LineStatusSent, enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{administers: true})

	detail, err := svc.GetOrderByShortCode(context.Background(), Viewer{
		UserID: uuid.New(),
		Role:   enums.ActorRoleGymStaff,
	}, repo.order.ShortCode)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if detail.ShortCode != repo.order.ShortCode {
		t.Fatalf("expected short code %d got %d", repo.order.ShortCode, detail.ShortCode)
	}
	if len(detail.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(detail.Lines))
	}
}

func TestGetOrderByShortCodeHidesForeignGym(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusAtGym, enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{administers: false})

	_, err := svc.GetOrderByShortCode(context.Background(), Viewer{
		UserID: uuid.New(),
		Role:   enums.ActorRoleGymStaff,
	}, repo.order.ShortCode)
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestGetOrderByShortCodeUnknownCode(t *testing.T) {
	repo := &stubOrdersRepo{order: newTestOrder(enums.OrderStatusAtGym, enums.LineStatusSent)}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubGymAuthority{administers: true})

	_, err := svc.GetOrderByShortCode(context.Background(), Viewer{
		UserID: uuid.New(),
		Role:   enums.ActorRoleGymStaff,
	}, 999999)
	expectCode(t, err, pkgerrors.CodeNotFound)
}
