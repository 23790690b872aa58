package gyms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
)

// Service exposes pickup-location reads plus the staff authority checks used
// by the fulfillment and settlement flows.
type Service interface {
	GetGym(ctx context.Context, gymID uuid.UUID) (*GymDetail, error)
	ListGyms(ctx context.Context) ([]GymDetail, error)
	AdministersGym(ctx context.Context, userID, gymID uuid.UUID) (bool, error)
	GymsAdministeredBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// GymDetail is the read projection of a pickup location.
type GymDetail struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Line1      string    `json:"line1"`
	City       string    `json:"city"`
	PostalCode string    `json:"postal_code"`
	Active     bool      `json:"active"`
}

type service struct {
	repo Repository
}

// NewService builds a gyms service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("gyms repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetGym(ctx context.Context, gymID uuid.UUID) (*GymDetail, error) {
	if gymID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gym id required")
	}
	gym, err := s.repo.FindGym(ctx, gymID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "gym not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gym")
	}
	detail := buildGymDetail(gym)
	return &detail, nil
}

func (s *service) ListGyms(ctx context.Context) ([]GymDetail, error) {
	gyms, err := s.repo.ListActiveGyms(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list gyms")
	}
	out := make([]GymDetail, len(gyms))
	for i := range gyms {
		out[i] = buildGymDetail(&gyms[i])
	}
	return out, nil
}

// AdministersGym reports whether the user holds any staff role at the gym.
func (s *service) AdministersGym(ctx context.Context, userID, gymID uuid.UUID) (bool, error) {
	if userID == uuid.Nil || gymID == uuid.Nil {
		return false, nil
	}
	_, err := s.repo.FindMembership(ctx, gymID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *service) GymsAdministeredBy(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	memberships, err := s.repo.ListMembershipsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, len(memberships))
	for i, membership := range memberships {
		out[i] = membership.GymID
	}
	return out, nil
}

func buildGymDetail(gym *models.Gym) GymDetail {
	return GymDetail{
		ID:         gym.ID,
		Name:       gym.Name,
		Line1:      gym.Line1,
		City:       gym.City,
		PostalCode: gym.PostalCode,
		Active:     gym.Active,
	}
}

// AdminPolicy answers whether an authenticated email belongs to a site admin.
// The allowlist comes from configuration and is matched case-insensitively.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy builds the policy from the configured allowlist.
func NewAdminPolicy(cfg config.AdminConfig) *AdminPolicy {
	emails := make(map[string]struct{}, len(cfg.Emails))
	for _, email := range cfg.Emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		emails[email] = struct{}{}
	}
	return &AdminPolicy{emails: emails}
}

// IsSiteAdmin reports whether the email is on the allowlist.
func (p *AdminPolicy) IsSiteAdmin(email string) bool {
	if p == nil {
		return false
	}
	_, ok := p.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}
