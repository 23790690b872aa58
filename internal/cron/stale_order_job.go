package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StaleOrderJobParams configure the stale-order cancellation job.
type StaleOrderJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Repo   orders.Repository
	Outbox outboxEmitter
	TTL    time.Duration
}

// NewStaleOrderJob builds the job that cancels PENDING orders the butcher
// never started.
func NewStaleOrderJob(params StaleOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("stale order ttl required")
	}
	return &staleOrderJob{
		logg:   params.Logger,
		db:     params.DB,
		repo:   params.Repo,
		outbox: params.Outbox,
		ttl:    params.TTL,
		now:    time.Now,
	}, nil
}

type staleOrderJob struct {
	logg   *logger.Logger
	db     txRunner
	repo   orders.Repository
	outbox outboxEmitter
	ttl    time.Duration
	now    func() time.Time
}

func (j *staleOrderJob) Name() string { return "stale-orders" }

func (j *staleOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.repo.FindPendingOrdersBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}

	var errs error
	expired := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("expire order %s: %w", order.ID, err))
			continue
		}
		expired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(stale),
		"expired":    expired,
	})
	j.logg.Info(logCtx, "stale order sweep complete")
	return errs
}

func (j *staleOrderJob) expireOrder(ctx context.Context, order models.Order) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)

		current, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		// A butcher may have picked it up between query and expiry.
		if current.Status != enums.OrderStatusPending {
			return nil
		}

		now := j.now().UTC()
		err = repo.UpdateOrderVersioned(ctx, current.ID, current.Version, map[string]any{
			"status":      enums.OrderStatusCancelled,
			"canceled_at": now,
		})
		if err != nil {
			if errors.Is(err, orders.ErrVersionConflict) {
				return nil
			}
			return err
		}

		ttlHours := int(j.ttl.Hours())
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.OrderExpiredEvent{
				OrderID:   current.ID,
				ShortCode: current.ShortCode,
				ExpiredAt: now,
				TTLHours:  &ttlHours,
			},
		}
		return j.outbox.Emit(ctx, tx, event)
	})
}
