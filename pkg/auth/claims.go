package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	Email       string
	Role        enums.ActorRole
	ActiveGymID *uuid.UUID
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued by the identity service.
type AccessTokenClaims struct {
	UserID      uuid.UUID       `json:"user_id"`
	Email       string          `json:"email"`
	Role        enums.ActorRole `json:"role"`
	ActiveGymID *uuid.UUID      `json:"active_gym_id,omitempty"`
	jwt.RegisteredClaims
}
