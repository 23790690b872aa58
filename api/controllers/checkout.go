package controllers

import (
	"net/http"

	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	"github.com/bob-sav/gym-meat-sub000/api/responses"
	"github.com/bob-sav/gym-meat-sub000/api/validators"
	"github.com/bob-sav/gym-meat-sub000/internal/checkout"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

// Checkout places a new pickup order for the authenticated customer.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var input checkout.CheckoutInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.CustomerUserID = middleware.UserIDFromContext(r.Context())

		detail, err := svc.Execute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, detail)
	}
}
