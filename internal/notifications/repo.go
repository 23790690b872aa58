package notifications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bob-sav/gym-meat-sub000/pkg/db/models"
)

// Repository reads the identity and location rows needed to address mail.
type Repository interface {
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	FindGym(ctx context.Context, gymID uuid.UUID) (*models.Gym, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a notifications repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
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
