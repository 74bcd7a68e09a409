package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborpay/scanpay-backend/api/routes"
	"github.com/harborpay/scanpay-backend/internal/broadcast"
	"github.com/harborpay/scanpay-backend/internal/fingerprint"
	"github.com/harborpay/scanpay-backend/internal/gate"
	"github.com/harborpay/scanpay-backend/internal/matcher"
	"github.com/harborpay/scanpay-backend/internal/merchants"
	"github.com/harborpay/scanpay-backend/internal/notify"
	"github.com/harborpay/scanpay-backend/internal/observations"
	"github.com/harborpay/scanpay-backend/internal/orders"
	"github.com/harborpay/scanpay-backend/pkg/config"
	"github.com/harborpay/scanpay-backend/pkg/db"
	"github.com/harborpay/scanpay-backend/pkg/logger"
	"github.com/harborpay/scanpay-backend/pkg/metrics"
	"github.com/harborpay/scanpay-backend/pkg/migrate"
	"github.com/harborpay/scanpay-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	merchantService, err := merchants.NewService(merchants.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create merchant service", err)
		os.Exit(1)
	}

	requestGate, err := gate.New(merchantService, gate.NewRedisNonceStore(redisClient), gate.Options{
		TimestampWindow: cfg.Gate.TimestampWindow,
		NonceTTL:        cfg.Gate.NonceTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create signature gate", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())

	allocator, err := fingerprint.NewAllocator(orderRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create fingerprint allocator", err)
		os.Exit(1)
	}

	broadcastService, err := broadcast.NewService(broadcast.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create broadcast service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orderRepo, merchantService, allocator, broadcastService, logg, cfg.Orders)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	notifier, err := notify.NewSender(merchantService, cfg.Notify)
	if err != nil {
		logg.Error(context.Background(), "failed to create merchant notifier", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	matchMetrics := metrics.NewMatchMetrics(registry)

	matchService, err := matcher.NewService(orderRepo, notifier, matchMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create matcher service", err)
		os.Exit(1)
	}

	observationService, err := observations.NewService(observations.NewRedisDedupStore(redisClient), matchService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create observation service", err)
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
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Gate:         requestGate,
			Orders:       orderService,
			Observations: observationService,
			Broadcast:    broadcastService,
			Metrics:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
