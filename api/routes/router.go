package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bob-sav/gym-meat-sub000/api/controllers"
	"github.com/bob-sav/gym-meat-sub000/api/middleware"
	checkoutsvc "github.com/bob-sav/gym-meat-sub000/internal/checkout"
	gymsvc "github.com/bob-sav/gym-meat-sub000/internal/gyms"
	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/internal/settlements"
	"github.com/bob-sav/gym-meat-sub000/pkg/auth/session"
	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/enums"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
	"github.com/bob-sav/gym-meat-sub000/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps collects everything the router mounts.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Admins      middleware.SiteAdminChecker
	Checkout    checkoutsvc.Service
	Orders      orders.Service
	Gyms        gymsvc.Service
	Settlements settlements.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, deps.Admins, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Get("/gyms", controllers.ListGyms(deps.Gyms, logg))
		r.Get("/gyms/{gymId}", controllers.GetGym(deps.Gyms, logg))

		r.With(middleware.RequireRole(logg, enums.ActorRoleCustomer)).
			Post("/orders", controllers.Checkout(deps.Checkout, logg))
		r.Get("/orders", controllers.ListOrders(deps.Orders, logg))
		r.Get("/orders/{orderId}", controllers.GetOrder(deps.Orders, logg))

		r.Route("/butcher", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleButcher, enums.ActorRoleAdmin))
			r.Post("/lines/{lineId}/state", controllers.SetLineState(deps.Orders, logg))
			r.Post("/orders/{orderId}/state", controllers.SetOrderStateButcher(deps.Orders, logg))
			r.Post("/settlements", controllers.CreateSettlement(deps.Settlements, enums.SettlementKindButcher, logg))
			r.Get("/settlements", controllers.ListSettlements(deps.Settlements, enums.SettlementKindButcher, logg))
			r.Get("/settlements/{settlementId}", controllers.GetSettlement(deps.Settlements, logg))
		})

		r.Route("/gym", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleGymStaff, enums.ActorRoleAdmin))
			r.Get("/orders/code/{shortCode}", controllers.GetOrderByCode(deps.Orders, logg))
			r.Post("/orders/{orderId}/state", controllers.SetOrderStateGym(deps.Orders, logg))
			r.Post("/settlements", controllers.CreateSettlement(deps.Settlements, enums.SettlementKindGym, logg))
			r.Get("/settlements", controllers.ListSettlements(deps.Settlements, enums.SettlementKindGym, logg))
			r.Get("/settlements/{settlementId}", controllers.GetSettlement(deps.Settlements, logg))
		})
	})

	return r
}
