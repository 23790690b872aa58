package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// User mirrors the identity rows managed by the external auth provider.
// This service only reads them (customer emails for notifications, role checks).
type User struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string          `gorm:"column:email;not null;uniqueIndex:ux_users_email"`
	Name      string          `gorm:"column:name;not null;default:''"`
	Role      enums.ActorRole `gorm:"column:role;type:actor_role;not null;default:'customer'"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
