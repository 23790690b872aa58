package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/pagination"
)

type stubStaleRepo struct {
	stale      []models.Order
	byID       map[uuid.UUID]*models.Order
	updated    map[uuid.UUID]map[string]any
	findErrFor uuid.UUID
}

func (s *stubStaleRepo) WithTx(tx *gorm.DB) orders.Repository {
	return s
}

func (s *stubStaleRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubStaleRepo) CreateOrderLines(ctx context.Context, lines []models.OrderLine) error {
	panic("not implemented")
}

func (s *stubStaleRepo) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findErrFor == orderID {
		return nil, errors.New("load failed")
	}
	order, ok := s.byID[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func (s *stubStaleRepo) FindOrderByShortCode(ctx context.Context, shortCode int64) (*models.Order, error) {
	panic("not implemented")
}

func (s *stubStaleRepo) FindLine(ctx context.Context, lineID uuid.UUID) (*models.OrderLine, error) {
	panic("not implemented")
}

func (s *stubStaleRepo) FindLinesByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	panic("not implemented")
}

func (s *stubStaleRepo) ListOrders(ctx context.Context, params pagination.Params, filters orders.OrderFilters) (*orders.OrderList, error) {
	panic("not implemented")
}

func (s *stubStaleRepo) FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return s.stale, nil
}

func (s *stubStaleRepo) UpdateLineVersioned(ctx context.Context, lineID uuid.UUID, version int, updates map[string]any) error {
	panic("not implemented")
}

func (s *stubStaleRepo) UpdateOrderVersioned(ctx context.Context, orderID uuid.UUID, version int, updates map[string]any) error {
	if s.updated == nil {
		s.updated = make(map[uuid.UUID]map[string]any)
	}
	s.updated[orderID] = updates
	return nil
}

type stubOutboxEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cron-test", Output: io.Discard})
}

func pendingOrder(created time.Time) *models.Order {
	return &models.Order{
		ID:        uuid.New(),
		ShortCode: 100042,
		Status:    enums.OrderStatusPending,
		CreatedAt: created,
	}
}

func TestStaleOrderJobExpiresPending(t *testing.T) {
	old := time.Now().UTC().Add(-11 * 24 * time.Hour)
	stale := pendingOrder(old)
	repo := &stubStaleRepo{
		stale: []models.Order{*stale},
		byID:  map[uuid.UUID]*models.Order{stale.ID: stale},
	}
	emitter := &stubOutboxEmitter{}
	job, err := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		DB:     stubTxRunner{},
		Repo:   repo,
		Outbox: emitter,
		TTL:    240 * time.Hour,
	})
	if err != nil {
		t.Fatalf("job constructor failed: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	updates, ok := repo.updated[stale.ID]
	if !ok {
		t.Fatal("expected order update")
	}
	if updates["status"] != enums.OrderStatusCancelled {
		t.Fatalf("expected cancellation, got %v", updates["status"])
	}
	if _, ok := updates["canceled_at"]; !ok {
		t.Fatal("expected canceled_at stamp")
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderExpired {
		t.Fatalf("expected order.expired event, got %+v", emitter.events)
	}
}

func TestStaleOrderJobSkipsAdvancedOrders(t *testing.T) {
	old := time.Now().UTC().Add(-11 * 24 * time.Hour)
	moved := pendingOrder(old)
	current := *moved
	current.Status = enums.OrderStatusPreparing
	repo := &stubStaleRepo{
		stale: []models.Order{*moved},
		byID:  map[uuid.UUID]*models.Order{moved.ID: &current},
	}
	emitter := &stubOutboxEmitter{}
	job, _ := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		DB:     stubTxRunner{},
		Repo:   repo,
		Outbox: emitter,
		TTL:    240 * time.Hour,
	})

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatal("advanced order must not be touched")
	}
	if len(emitter.events) != 0 {
		t.Fatalf("no events expected, got %+v", emitter.events)
	}
}

func TestStaleOrderJobContinuesAfterFailure(t *testing.T) {
	old := time.Now().UTC().Add(-11 * 24 * time.Hour)
	broken := pendingOrder(old)
	fine := pendingOrder(old)
	repo := &stubStaleRepo{
		stale:      []models.Order{*broken, *fine},
		byID:       map[uuid.UUID]*models.Order{fine.ID: fine},
		findErrFor: broken.ID,
	}
	emitter := &stubOutboxEmitter{}
	job, _ := NewStaleOrderJob(StaleOrderJobParams{
		Logger: testLogger(),
		DB:     stubTxRunner{},
		Repo:   repo,
		Outbox: emitter,
		TTL:    240 * time.Hour,
	})

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if _, ok := repo.updated[fine.ID]; !ok {
		t.Fatal("healthy order should still be expired")
	}
}
