package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	"github.com/bob-sav/gym-meat-sub000/api/responses"
	"github.com/bob-sav/gym-meat-sub000/api/validators"
	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	pkgerrors "github.com/bob-sav/gym-meat-sub000/pkg/errors"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
)

// ListOrders returns the caller's order page. Scoping by role happens in the service.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters, err := buildOrderFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := orders.Viewer{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}
		list, err := svc.ListOrders(r.Context(), viewer, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns a single order with its lines.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		viewer := orders.Viewer{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}
		detail, err := svc.GetOrder(r.Context(), viewer, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func buildOrderFilters(r *http.Request) (orders.OrderFilters, error) {
	var filters orders.OrderFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("gym_id")); raw != "" {
		gymID, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gym_id filter")
		}
		filters.PickupGymIDs = []uuid.UUID{gymID}
	}
	if from, err := parseTimeFilter(r, "date_from"); err != nil {
		return filters, err
	} else if from != nil {
		filters.DateFrom = from
	}
	if to, err := parseTimeFilter(r, "date_to"); err != nil {
		return filters, err
	} else if to != nil {
		filters.DateTo = to
	}
	return filters, nil
}

func parseTimeFilter(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "time filter must be RFC3339").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// GetOrderByCode resolves an order from the short code read out at the
// pickup desk.
func GetOrderByCode(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		shortCode, err := validators.ParsePathInt64(r, "shortCode")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := orders.Viewer{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}
		detail, err := svc.GetOrderByShortCode(r.Context(), viewer, shortCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
