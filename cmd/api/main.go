package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/smartstockhq/smartstock-backend/api/routes"
	"github.com/smartstockhq/smartstock-backend/internal/auth"
	"github.com/smartstockhq/smartstock-backend/internal/bookings"
	"github.com/smartstockhq/smartstock-backend/internal/inventory"
	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/internal/reports"
	"github.com/smartstockhq/smartstock-backend/internal/rooms"
	"github.com/smartstockhq/smartstock-backend/internal/users"
	"github.com/smartstockhq/smartstock-backend/pkg/config"
	"github.com/smartstockhq/smartstock-backend/pkg/db"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
	"github.com/smartstockhq/smartstock-backend/pkg/migrate"
	"github.com/smartstockhq/smartstock-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	services, err := buildServices(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
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
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, services),
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}

func buildServices(cfg *config.Config, dbClient *db.Client) (routes.Services, error) {
	gormDB := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:          users.NewRepository(gormDB),
		JWTConfig:         cfg.JWT,
		PasswordConfig:    cfg.Password,
		AllowRegistration: cfg.FeatureFlags.AllowRegistration,
	})
	if err != nil {
		return routes.Services{}, err
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(gormDB), dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	roomsService, err := rooms.NewService(rooms.NewRepository(gormDB))
	if err != nil {
		return routes.Services{}, err
	}

	bookingsRepo := bookings.NewRepository(gormDB)
	bookingsService, err := bookings.NewService(bookingsRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	ledgerRepo := ledger.NewRepository(gormDB)
	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Repository: ledgerRepo,
		DB:         dbClient,
		Bookings:   bookingsService,
		Inventory:  inventoryService,
		Rules:      ledgerRules(cfg.Ledger),
	})
	if err != nil {
		return routes.Services{}, err
	}

	reportsService, err := reports.NewService(reports.ServiceParams{
		Analytics: ledgerService,
		Ledger:    ledgerRepo,
		Inventory: inventoryService,
		Leases:    bookingsRepo,
		Rooms:     roomsService,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Inventory: inventoryService,
		Rooms:     roomsService,
		Bookings:  bookingsService,
		Ledger:    ledgerService,
		Reports:   reportsService,
	}, nil
}

func ledgerRules(cfg config.LedgerConfig) ledger.Rules {
	return ledger.Rules{
		GraceDays:    cfg.GraceDays,
		DailyLateFee: decimal.NewFromInt(int64(cfg.DailyLateFee)),
		DueSoonDays:  cfg.DueSoonDays,
	}
}
