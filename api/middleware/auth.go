package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/bob-sav/gym-meat-sub000/api/responses"
	pkgAuth "github.com/bob-sav/gym-meat-sub000/pkg/auth"
	"github.com/bob-sav/gym-meat-sub000/pkg/auth/session"
	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

// SiteAdminChecker confirms an email belongs to the configured admin
// allowlist. The JWT role claim alone never grants admin authority.
type SiteAdminChecker interface {
	IsSiteAdmin(email string) bool
}

// Auth validates the bearer token, confirms the session is still live in
// Redis, and seeds the request context with user ID, role, and active gym.
// Tokens carrying the admin role are additionally checked against the
// allowlist; without a policy the admin role is refused outright.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, admins SiteAdminChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deny := func(err error) {
				responses.WriteError(r.Context(), logg, w, err)
			}

			token := bearerToken(r)
			if token == "" {
				deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				deny(pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}
			if claims.ID == "" {
				deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if claims.Role == enums.ActorRoleAdmin && (admins == nil || !admins.IsSiteAdmin(claims.Email)) {
				deny(pkgerrors.New(pkgerrors.CodeForbidden, "admin not allowlisted"))
				return
			}

			if verifier != nil {
				live, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					deny(pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !live {
					deny(pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			next.ServeHTTP(w, r.WithContext(claimsContext(r.Context(), claims, logg)))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	}
	return raw
}

func claimsContext(ctx context.Context, claims *pkgAuth.AccessTokenClaims, logg *logger.Logger) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, claims.UserID)
	ctx = context.WithValue(ctx, ctxRole, claims.Role)
	if claims.ActiveGymID != nil {
		ctx = context.WithValue(ctx, ctxGymID, *claims.ActiveGymID)
	}

	if logg == nil {
		return ctx
	}
	fields := map[string]any{
		"user_id":    claims.UserID.String(),
		"actor_role": string(claims.Role),
	}
	if claims.ActiveGymID != nil {
		fields["gym_id"] = claims.ActiveGymID.String()
	}
	return logg.WithFields(ctx, fields)
}
