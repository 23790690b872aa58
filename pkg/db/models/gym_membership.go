package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// GymMembership links a staff user with the pickup location they administer.
type GymMembership struct {
	ID        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GymID     uuid.UUID           `gorm:"column:gym_id;type:uuid;not null;uniqueIndex:ux_gym_memberships_gym_user"`
	UserID    uuid.UUID           `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_gym_memberships_gym_user"`
	Role      enums.GymMemberRole `gorm:"column:role;type:gym_member_role;not null"`
	CreatedAt time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
