package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	"github.com/bob-sav/gym-meat-sub000/api/responses"
	"github.com/bob-sav/gym-meat-sub000/api/validators"
	"github.com/bob-sav/gym-meat-sub000/internal/settlements"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

type createSettlementRequest struct {
	GymID  *uuid.UUID `json:"gym_id"`
	Notes  *string    `json:"notes" validate:"omitempty,max=500"`
	DryRun bool       `json:"dry_run"`
}

// CreateSettlement batches every eligible picked-up order into one settlement.
func CreateSettlement(svc settlements.Service, kind enums.SettlementKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		var body createSettlementRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), settlements.CreateInput{
			Kind:        kind,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
			GymID:       body.GymID,
			Notes:       body.Notes,
			DryRun:      body.DryRun,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		// An empty batch and a dry run both answer 200; only a committed batch is a 201.
		status := http.StatusCreated
		if result.DryRun || result.NothingToSettle {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// GetSettlement returns one settlement with its frozen totals.
func GetSettlement(svc settlements.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		settlementID, err := validators.ParsePathUUID(r, "settlementId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := settlements.Viewer{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}
		detail, err := svc.Get(r.Context(), viewer, settlementID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// ListSettlements pages through settlements of one kind visible to the caller.
func ListSettlements(svc settlements.Service, kind enums.SettlementKind, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settlements service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := settlements.Viewer{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}
		list, err := svc.List(r.Context(), viewer, kind, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
