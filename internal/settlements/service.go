package settlements

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

const dryRunSampleSize = 10

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gymAuthority interface {
	AdministersGym(ctx context.Context, userID, gymID uuid.UUID) (bool, error)
	GymsAdministeredBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// Viewer identifies the actor for scoped settlement reads.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// Service defines settlement batching and reconciliation reads.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, viewer Viewer, settlementID uuid.UUID) (*SettlementDetail, error)
	List(ctx context.Context, viewer Viewer, kind enums.SettlementKind, params pagination.Params) (*SettlementList, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	gyms    gymAuthority
	metrics *metrics.FulfillmentMetrics
}

// NewService builds a settlements service. Metrics may be nil outside the
// API process.
func NewService(repo Repository, tx txRunner, outbox outboxPublisher, gyms gymAuthority, fm *metrics.FulfillmentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settlements repository required")
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

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid settlement kind")
	}
	if input.ActorUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var gymID *uuid.UUID
	switch input.Kind {
	case enums.SettlementKindGym:
		if input.ActorRole != enums.ActorRoleGymStaff && input.ActorRole != enums.ActorRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot create gym settlements")
		}
		resolved, err := s.resolveGymScope(ctx, input)
		if err != nil {
			return nil, err
		}
		gymID = resolved
	case enums.SettlementKindButcher:
		if input.ActorRole != enums.ActorRoleButcher && input.ActorRole != enums.ActorRoleAdmin {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot create butcher settlements")
		}
		if input.GymID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "butcher settlements are not gym-scoped")
		}
	}

	if input.DryRun {
		return s.preview(ctx, input.Kind, gymID)
	}

	result := &CreateResult{Kind: input.Kind, GymID: gymID}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		settlement, err := repo.CreateSettlement(ctx, &models.Settlement{
			Kind:            input.Kind,
			GymID:           gymID,
			CreatedByUserID: input.ActorUserID,
			Notes:           input.Notes,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create settlement")
		}

		claimed, err := repo.ClaimEligible(ctx, input.Kind, settlement.ID, gymID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim eligible orders")
		}
		if len(claimed) == 0 {
			// Roll back the empty batch; the caller still gets a 200 no-op.
			result.NothingToSettle = true
			result.TotalAmount = formatAmount(0)
			return errNothingToSettle
		}

		total := 0
		for _, order := range claimed {
			total += order.TotalCents
		}
		if err := repo.StampTotals(ctx, settlement.ID, len(claimed), total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stamp settlement totals")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSettlementCreated,
			AggregateType: enums.AggregateSettlement,
			AggregateID:   settlement.ID,
			Version:       1,
			OccurredAt:    time.Now(),
			Actor: &outbox.ActorRef{
				UserID: input.ActorUserID,
				GymID:  gymID,
				Role:   input.ActorRole.String(),
			},
			Data: payloads.SettlementCreatedEvent{
				SettlementID: settlement.ID,
				Kind:         input.Kind,
				GymID:        gymID,
				OrderCount:   len(claimed),
				TotalCents:   total,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "queue settlement event")
		}

		id := settlement.ID
		result.SettlementID = &id
		result.OrderCount = len(claimed)
		result.TotalCents = total
		result.TotalAmount = formatAmount(total)
		return nil
	})
	if err != nil && !errors.Is(err, errNothingToSettle) {
		return nil, err
	}
	if result.SettlementID != nil {
		s.metrics.IncSettlement(input.Kind)
	}
	return result, nil
}

// errNothingToSettle aborts the creation transaction without surfacing an
// error to the caller.
var errNothingToSettle = errors.New("nothing to settle")

func (s *service) preview(ctx context.Context, kind enums.SettlementKind, gymID *uuid.UUID) (*CreateResult, error) {
	rows, err := s.repo.PreviewEligible(ctx, kind, gymID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "preview eligible orders")
	}

	total := 0
	for _, row := range rows {
		total += row.TotalCents
	}
	sample := make([]OrderSample, 0, dryRunSampleSize)
	for i, row := range rows {
		if i == dryRunSampleSize {
			break
		}
		sample = append(sample, OrderSample{
			ID:         row.ID,
			ShortCode:  row.ShortCode,
			TotalCents: row.TotalCents,
		})
	}
	return &CreateResult{
		Kind:            kind,
		GymID:           gymID,
		OrderCount:      len(rows),
		TotalCents:      total,
		TotalAmount:     formatAmount(total),
		DryRun:          true,
		NothingToSettle: len(rows) == 0,
		Sample:          sample,
	}, nil
}

// resolveGymScope pins a gym settlement to exactly one pickup location. An
// explicit gym_id disambiguates multi-location staff; admins must always
// name the gym.
func (s *service) resolveGymScope(ctx context.Context, input CreateInput) (*uuid.UUID, error) {
	if input.GymID != nil {
		if input.ActorRole == enums.ActorRoleAdmin {
			return input.GymID, nil
		}
		ok, err := s.gyms.AdministersGym(ctx, input.ActorUserID, *input.GymID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gym membership")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gym not found")
		}
		return input.GymID, nil
	}

	if input.ActorRole == enums.ActorRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gym_id required")
	}
	gymIDs, err := s.gyms.GymsAdministeredBy(ctx, input.ActorUserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gym scope")
	}
	switch len(gymIDs) {
	case 0:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "no administered gyms")
	case 1:
		id := gymIDs[0]
		return &id, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gym_id required for multi-location staff")
	}
}

func (s *service) Get(ctx context.Context, viewer Viewer, settlementID uuid.UUID) (*SettlementDetail, error) {
	if settlementID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settlement id required")
	}
	settlement, err := s.repo.FindSettlement(ctx, settlementID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load settlement")
	}
	if err := s.authorizeView(ctx, viewer, settlement); err != nil {
		return nil, err
	}
	detail := buildSettlementDetail(settlement)
	return &detail, nil
}

func (s *service) List(ctx context.Context, viewer Viewer, kind enums.SettlementKind, params pagination.Params) (*SettlementList, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid settlement kind")
	}

	var gymIDs []uuid.UUID
	switch viewer.Role {
	case enums.ActorRoleAdmin:
		// unscoped
	case enums.ActorRoleButcher:
		if kind != enums.SettlementKindButcher {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "butchers see butcher settlements only")
		}
	case enums.ActorRoleGymStaff:
		if kind != enums.SettlementKindGym {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "gym staff see gym settlements only")
		}
		ids, err := s.gyms.GymsAdministeredBy(ctx, viewer.UserID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gym scope")
		}
		if len(ids) == 0 {
			return &SettlementList{Settlements: []SettlementDetail{}}, nil
		}
		gymIDs = ids
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot list settlements")
	}

	rows, next, err := s.repo.ListSettlements(ctx, kind, gymIDs, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list settlements")
	}
	list := &SettlementList{
		Settlements: make([]SettlementDetail, len(rows)),
		NextCursor:  next,
	}
	for i := range rows {
		list.Settlements[i] = buildSettlementDetail(&rows[i])
	}
	return list, nil
}

// authorizeView hides cross-tenant settlements as NotFound.
func (s *service) authorizeView(ctx context.Context, viewer Viewer, settlement *models.Settlement) error {
	switch viewer.Role {
	case enums.ActorRoleAdmin:
		return nil
	case enums.ActorRoleButcher:
		if settlement.Kind == enums.SettlementKindButcher {
			return nil
		}
	case enums.ActorRoleGymStaff:
		if settlement.Kind == enums.SettlementKindGym && settlement.GymID != nil {
			ok, err := s.gyms.AdministersGym(ctx, viewer.UserID, *settlement.GymID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check gym membership")
			}
			if ok {
				return nil
			}
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "settlement not found")
}

func buildSettlementDetail(settlement *models.Settlement) SettlementDetail {
	return SettlementDetail{
		ID:              settlement.ID,
		Kind:            settlement.Kind,
		GymID:           settlement.GymID,
		CreatedByUserID: settlement.CreatedByUserID,
		OrderCount:      settlement.OrderCount,
		TotalCents:      settlement.TotalCents,
		TotalAmount:     formatAmount(settlement.TotalCents),
		Notes:           settlement.Notes,
		CreatedAt:       settlement.CreatedAt,
	}
}
