package gyms

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a gyms repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindGym(ctx context.Context, gymID uuid.UUID) (*models.Gym, error) {
	var gym models.Gym
	err := r.db.WithContext(ctx).
		Where("id = ?", gymID).
		First(&gym).Error
	if err != nil {
		return nil, err
	}
	return &gym, nil
}

func (r *repository) ListActiveGyms(ctx context.Context) ([]models.Gym, error) {
	var gyms []models.Gym
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&gyms).Error
	if err != nil {
		return nil, err
	}
	return gyms, nil
}

func (r *repository) FindMembership(ctx context.Context, gymID, userID uuid.UUID) (*models.GymMembership, error) {
	var membership models.GymMembership
	err := r.db.WithContext(ctx).
		Where("gym_id = ? AND user_id = ?", gymID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *repository) ListMembershipsByUser(ctx context.Context, userID uuid.UUID) ([]models.GymMembership, error) {
	var memberships []models.GymMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&memberships).Error
	if err != nil {
		return nil, err
	}
	return memberships, nil
}
