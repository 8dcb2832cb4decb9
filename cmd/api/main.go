package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tillpointhq/tillpoint-backend/api/routes"
	"github.com/tillpointhq/tillpoint-backend/internal/events"
	"github.com/tillpointhq/tillpoint-backend/internal/idempotency"
	"github.com/tillpointhq/tillpoint-backend/internal/menu"
	"github.com/tillpointhq/tillpoint-backend/internal/orders"
	"github.com/tillpointhq/tillpoint-backend/internal/payments"
	"github.com/tillpointhq/tillpoint-backend/internal/tenants"
	"github.com/tillpointhq/tillpoint-backend/internal/tickets"
	"github.com/tillpointhq/tillpoint-backend/pkg/config"
	"github.com/tillpointhq/tillpoint-backend/pkg/db"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
	"github.com/tillpointhq/tillpoint-backend/pkg/migrate"
	"github.com/tillpointhq/tillpoint-backend/pkg/redis"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
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

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	svcs, err := buildServices(dbClient, redisClient, logg)
	if err != nil {
		logg.Error(ctx, "failed to build services", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, promRegistry, svcs)

	server := &http.Server{
		Addr:              ":" + port(cfg),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logg.Info(ctx, fmt.Sprintf("api listening on %s", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "http server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logg.Info(ctx, "shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}

func buildServices(dbClient *db.Client, redisClient *redis.Client, logg *logger.Logger) (routes.Services, error) {
	ledger, err := idempotency.NewLedger(idempotency.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, fmt.Errorf("idempotency ledger: %w", err)
	}

	publisher, err := events.NewRedisPublisher(redisClient, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("event publisher: %w", err)
	}

	tenantSvc, err := tenants.NewService(tenants.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, fmt.Errorf("tenants service: %w", err)
	}

	menuSvc, err := menu.NewService(menu.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, fmt.Errorf("menu service: %w", err)
	}

	ticketSvc, err := tickets.NewService(tickets.NewRepository(dbClient.DB()))
	if err != nil {
		return routes.Services{}, fmt.Errorf("tickets service: %w", err)
	}

	orderSvc, err := orders.NewService(dbClient, orders.NewRepository(dbClient.DB()), ledger, publisher, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("orders service: %w", err)
	}

	paymentSvc, err := payments.NewService(dbClient, payments.NewRepository(dbClient.DB()), ledger, logg)
	if err != nil {
		return routes.Services{}, fmt.Errorf("payments service: %w", err)
	}

	return routes.Services{
		Tenants:  tenantSvc,
		Menu:     menuSvc,
		Tickets:  ticketSvc,
		Orders:   orderSvc,
		Payments: paymentSvc,
	}, nil
}

func port(cfg *config.Config) string {
	// Heroku-style platforms inject PORT at runtime.
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return cfg.App.Port
}
