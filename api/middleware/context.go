package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
	ctxGymID  contextKey = "gym_id"
)

func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

func GymIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxGymID).(uuid.UUID); ok {
		return &v
	}
	return nil
}

// WithIdentity seeds the context with the authenticated actor. Exposed for tests.
func WithIdentity(ctx context.Context, userID uuid.UUID, role enums.ActorRole, gymID *uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxRole, role)
	if gymID != nil {
		ctx = context.WithValue(ctx, ctxGymID, *gymID)
	}
	return ctx
}
