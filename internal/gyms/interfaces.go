package gyms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
)

// Repository defines persistence operations for gyms and their staff.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindGym(ctx context.Context, gymID uuid.UUID) (*models.Gym, error)
	ListActiveGyms(ctx context.Context) ([]models.Gym, error)
	FindMembership(ctx context.Context, gymID, userID uuid.UUID) (*models.GymMembership, error)
	ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.GymMembership, error)
}
