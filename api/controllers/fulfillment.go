package controllers

import (
	"net/http"

	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	"github.com/bob-sav/gym-meat-sub000/api/responses"
	"github.com/bob-sav/gym-meat-sub000/api/validators"
	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

type setStateRequest struct {
	State string `json:"state" validate:"required"`
}

// SetLineState drives one order line through the preparation workflow.
func SetLineState(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		lineID, err := validators.ParsePathUUID(r, "lineId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseLineStatus(body.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid line state"))
			return
		}

		detail, err := svc.SetLineState(r.Context(), orders.SetLineStateInput{
			LineID:      lineID,
			TargetState: target,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// SetOrderStateButcher drives the butcher-side order edges.
func SetOrderStateButcher(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return setOrderState(svc, logg, func(ctx *http.Request, input orders.SetOrderStateInput) (*orders.OrderDetail, error) {
		return svc.SetOrderStateButcher(ctx.Context(), input)
	})
}

// SetOrderStateGym drives the gym-side order edges.
func SetOrderStateGym(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return setOrderState(svc, logg, func(ctx *http.Request, input orders.SetOrderStateInput) (*orders.OrderDetail, error) {
		return svc.SetOrderStateGym(ctx.Context(), input)
	})
}

func setOrderState(svc orders.Service, logg *logger.Logger, apply func(*http.Request, orders.SetOrderStateInput) (*orders.OrderDetail, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setStateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(body.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order state"))
			return
		}

		detail, err := apply(r, orders.SetOrderStateInput{
			OrderID:     orderID,
			TargetState: target,
			ActorUserID: middleware.UserIDFromContext(r.Context()),
			ActorRole:   middleware.RoleFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
