package controllers

import (
	"net/http"

	"github.com/bob-sav/gym-meat-sub000/api/responses"
	"github.com/bob-sav/gym-meat-sub000/api/validators"
	"github.com/bob-sav/gym-meat-sub000/internal/gyms"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

// ListGyms returns the active pickup locations.
func ListGyms(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gyms service unavailable"))
			return
		}
		list, err := svc.ListGyms(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetGym(svc gyms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "gyms service unavailable"))
			return
		}
		gymID, err := validators.ParsePathUUID(r, "gymId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		detail, err := svc.GetGym(r.Context(), gymID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
