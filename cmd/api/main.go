package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/bob-sav/gym-meat-sub000/api/routes"
	"github.com/bob-sav/gym-meat-sub000/internal/checkout"
	"github.com/bob-sav/gym-meat-sub000/internal/gyms"
	"github.com/bob-sav/gym-meat-sub000/internal/orders"
	"github.com/bob-sav/gym-meat-sub000/internal/settlements"
	"github.com/bob-sav/gym-meat-sub000/pkg/auth/session"
	"github.com/bob-sav/gym-meat-sub000/pkg/config"
	"github.com/bob-sav/gym-meat-sub000/pkg/db"
	"github.com/bob-sav/gym-meat-sub000/pkg/logger"
	"github.com/bob-sav/gym-meat-sub000/pkg/metrics"
	"github.com/bob-sav/gym-meat-sub000/pkg/migrate"
	"github.com/bob-sav/gym-meat-sub000/pkg/outbox"
	"github.com/bob-sav/gym-meat-sub000/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	adminPolicy := gyms.NewAdminPolicy(cfg.Admin)

	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	gymsService, err := gyms.NewService(gyms.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create gyms service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, gymsService, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(dbClient, ordersRepo, gymsService, outboxService)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	settlementsService, err := settlements.NewService(settlements.NewRepository(dbClient.DB()), dbClient, outboxService, gymsService, fulfillmentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlements service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisClient,
			Sessions:    sessionManager,
			Admins:      adminPolicy,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Gyms:        gymsService,
			Settlements: settlementsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
