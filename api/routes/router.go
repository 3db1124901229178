package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartstockhq/smartstock-backend/api/controllers"
	"github.com/smartstockhq/smartstock-backend/api/middleware"
	"github.com/smartstockhq/smartstock-backend/internal/auth"
	"github.com/smartstockhq/smartstock-backend/internal/bookings"
	"github.com/smartstockhq/smartstock-backend/internal/inventory"
	"github.com/smartstockhq/smartstock-backend/internal/ledger"
	"github.com/smartstockhq/smartstock-backend/internal/reports"
	"github.com/smartstockhq/smartstock-backend/internal/rooms"
	"github.com/smartstockhq/smartstock-backend/pkg/config"
	"github.com/smartstockhq/smartstock-backend/pkg/db"
	"github.com/smartstockhq/smartstock-backend/pkg/logger"
	"github.com/smartstockhq/smartstock-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth      auth.Service
	Inventory inventory.Service
	Rooms     rooms.Service
	Bookings  bookings.Service
	Ledger    ledger.Service
	Reports   reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(services.Auth, logg))
		r.With(
			middleware.AuthRateLimit(registerPolicy, redisClient, logg),
			middleware.Idempotency(redisClient, logg),
		).Post("/register", controllers.AuthRegister(services.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(services.Inventory, logg))
			r.Post("/", controllers.InventoryCreate(services.Inventory, logg))
			r.Get("/movements", controllers.InventoryMovements(services.Inventory, logg))
			r.Delete("/{itemId}", controllers.InventoryDelete(services.Inventory, logg))
			r.Post("/{itemId}/stock", controllers.InventoryAdjustStock(services.Inventory, logg))
		})

		r.Route("/rooms", func(r chi.Router) {
			r.Get("/", controllers.RoomsList(services.Rooms, logg))
			r.Post("/", controllers.RoomCreate(services.Rooms, logg))
			r.Get("/summary", controllers.RoomsSummary(services.Rooms, logg))
			r.Delete("/{roomId}", controllers.RoomDelete(services.Rooms, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingsList(services.Bookings, logg))
			r.Post("/", controllers.BookingCreate(services.Bookings, logg))
			r.Post("/{bookingId}/end", controllers.BookingEnd(services.Bookings, logg))
			r.Post("/{bookingId}/cancel", controllers.BookingCancel(services.Bookings, logg))
			r.Get("/{bookingId}/statement", controllers.BookingStatement(services.Reports, logg))
			r.Delete("/{bookingId}", controllers.BookingDelete(services.Bookings, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", controllers.PaymentsList(services.Ledger, logg))
			r.Post("/", controllers.PaymentCreate(services.Ledger, logg))
		})
		r.Route("/credits", func(r chi.Router) {
			r.Get("/", controllers.CreditsList(services.Ledger, logg))
			r.Post("/", controllers.CreditCreate(services.Ledger, logg))
		})

		r.Route("/accounting", func(r chi.Router) {
			r.Get("/summary", controllers.AccountingSummary(services.Reports, logg))
			r.Get("/transactions", controllers.AccountingTransactions(services.Reports, logg))
		})
		r.Get("/payment-tracker/summary", controllers.PaymentTrackerSummary(services.Reports, logg))
		r.Get("/dashboard", controllers.DashboardSummary(services.Reports, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/accounting.csv", controllers.AccountingReportCSV(services.Reports, logg))
			r.Get("/payment-tracker.csv", controllers.PaymentTrackerCSV(services.Reports, logg))
			r.Get("/stock-activity.csv", controllers.StockActivityCSV(services.Reports, logg))
			r.Get("/stock-activity.xlsx", controllers.StockActivityXLSX(services.Reports, logg))
		})
	})

	return r
}
