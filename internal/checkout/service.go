package checkout

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/internal/gyms"
	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/db"
	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox/payloads"
)

const (
	shortCodeMin      = 100_000
	shortCodeSpan     = 900_000
	shortCodeAttempts = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gymLoader interface {
	GetGym(ctx context.Context, gymID uuid.UUID) (*gyms.GymDetail, error)
}

// Service executes customer checkout.
type Service interface {
	Execute(ctx context.Context, input CheckoutInput) (*orders.OrderDetail, error)
}

type service struct {
	tx         txRunner
	ordersRepo orders.Repository
	gyms       gymLoader
	outbox     outboxPublisher
}

// NewService builds the checkout service.
func NewService(tx txRunner, ordersRepo orders.Repository, gyms gymLoader, publisher outboxPublisher) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gyms == nil {
		return nil, fmt.Errorf("gym loader required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		tx:         tx,
		ordersRepo: ordersRepo,
		gyms:       gyms,
		outbox:     publisher,
	}, nil
}

func (s *service) Execute(ctx context.Context, input CheckoutInput) (*orders.OrderDetail, error) {
	if input.CustomerUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line required")
	}
	for _, line := range input.Lines {
		if line.Qty <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line qty must be positive")
		}
		if line.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
	}

	gym, err := s.gyms.GetGym(ctx, input.PickupGymID)
	if err != nil {
		return nil, err
	}
	if !gym.Active {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup location is not accepting orders")
	}

	subtotal := 0
	lines := make([]models.OrderLine, len(input.Lines))
	for i, line := range input.Lines {
		unitCents := line.UnitPriceCents + line.Options.TotalDeltaCents()
		total := unitCents * line.Qty
		subtotal += total
		lines[i] = models.OrderLine{
			ProductID:      line.ProductID,
			Name:           line.Name,
			Species:        line.Species,
			Part:           line.Part,
			UnitLabel:      line.UnitLabel,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
			Options:        line.Options,
			TotalCents:     total,
			Status:         enums.LineStatusPending,
		}
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)

		order, err := s.createWithShortCode(ctx, repo, &models.Order{
			CustomerUserID:    input.CustomerUserID,
			Status:            enums.OrderStatusPending,
			SubtotalCents:     subtotal,
			TotalCents:        subtotal,
			PickupGymID:       &gym.ID,
			RequestedPickupAt: input.RequestedPickupAt,
			Note:              input.Note,
		})
		if err != nil {
			return err
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := repo.CreateOrderLines(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}
		order.Lines = lines

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			OccurredAt:    time.Now(),
			Actor: &outbox.ActorRef{
				UserID: input.CustomerUserID,
				Role:   enums.ActorRoleCustomer.String(),
			},
			Data: payloads.OrderCreatedEvent{
				OrderID:        order.ID,
				ShortCode:      order.ShortCode,
				CustomerUserID: order.CustomerUserID,
				PickupGymID:    order.PickupGymID,
				TotalCents:     order.TotalCents,
				LineCount:      len(order.Lines),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue order created event")
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders.BuildDetail(created), nil
}

// createWithShortCode retries order insertion on short-code collisions. The
// code space is large enough that more than a couple of retries means
// something else is wrong.
func (s *service) createWithShortCode(ctx context.Context, repo orders.Repository, order *models.Order) (*models.Order, error) {
	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code, err := randomShortCode()
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate short code")
		}
		order.ShortCode = code
		order.ID = uuid.Nil

		created, err := repo.CreateOrder(ctx, order)
		if err == nil {
			return created, nil
		}
		if db.IsUniqueViolation(err, "ux_orders_short_code") {
			continue
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate order short code")
}

func randomShortCode() (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(shortCodeSpan))
	if err != nil {
		return 0, err
	}
	return shortCodeMin + n.Int64(), nil
}
