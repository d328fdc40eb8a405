package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/krishisetu/krishisetu/internal/http/handlers"
	"github.com/krishisetu/krishisetu/internal/kv"
	"github.com/krishisetu/krishisetu/internal/otp"
	"github.com/krishisetu/krishisetu/internal/platform/ai"
	"github.com/krishisetu/krishisetu/internal/platform/notify"
	"github.com/krishisetu/krishisetu/internal/platform/payments"
	"github.com/krishisetu/krishisetu/internal/platform/weather"
	"github.com/krishisetu/krishisetu/internal/repo/postgres"
	"github.com/krishisetu/krishisetu/internal/service"
	"github.com/krishisetu/krishisetu/internal/session"
	"github.com/krishisetu/krishisetu/migrations"
	"github.com/krishisetu/krishisetu/pkg/config"
	"github.com/krishisetu/krishisetu/pkg/database"
	"github.com/krishisetu/krishisetu/pkg/events"
	"github.com/krishisetu/krishisetu/pkg/logger"
	mw "github.com/krishisetu/krishisetu/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// goose runs against database/sql, so borrow a stdlib handle from the pool.
	migrationDB := stdlib.OpenDBFromPool(pool)
	if err := migrations.Migrate(migrationDB); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration handle", "error", err)
	}

	store, cleanup := newStore(ctx, cfg)
	defer cleanup()

	eventBus := newEventBus(cfg)
	defer eventBus.Close()

	// Repositories
	farmerRepo := postgres.NewFarmerRepository(pool)
	expertRepo := postgres.NewExpertRepository(pool)
	adminRepo := postgres.NewAdminRepository(pool)
	bookingRepo := postgres.NewBookingRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	contentRepo := postgres.NewContentRepository(pool)
	workshopRepo := postgres.NewWorkshopRepository(pool)
	marketRepo := postgres.NewMarketRepository(pool)
	advisoryRepo := postgres.NewAdvisoryRepository(pool)

	// Platform clients
	production := cfg.App.IsProduction()
	sessions := session.NewManager(store, cfg.Auth.SessionTTL, production)
	otps := otp.NewLedger(store, cfg.Auth.OTPTTL)

	var sms notify.SMSSender = notify.NewDevSMS()
	var email notify.EmailSender = notify.NewDevEmail()
	if production {
		email = notify.NewMailerSend(cfg.Email)
	}

	var processor payments.Processor = payments.NopProcessor{}
	if cfg.Stripe.SecretKey != "" {
		processor = payments.NewStripe(cfg.Stripe)
	}

	advisor := ai.NewClient(cfg.AI)
	forecaster := weather.NewClient(cfg.Weather)

	// Services
	authSvc := service.NewAuthService(farmerRepo, expertRepo, adminRepo, otps, sessions, sms, eventBus)
	bookingSvc := service.NewBookingService(bookingRepo, expertRepo, farmerRepo, processor, email, eventBus)
	advisorySvc := service.NewAdvisoryService(advisor, advisoryRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo)
	learningSvc := service.NewLearningService(contentRepo, workshopRepo, farmerRepo, email, eventBus, cfg.Auth)
	marketSvc := service.NewMarketService(marketRepo)
	weatherSvc := service.NewWeatherService(forecaster)
	adminSvc := service.NewAdminService(expertRepo, farmerRepo)

	// 5 OTP sends per phone per minute.
	otpLimiter := kv.NewRateLimiter(store, 5, time.Minute)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.Health)

	r.Mount("/auth", handlers.NewAuthHandler(authSvc, sessions, otpLimiter, production).Routes())
	r.Mount("/calculator", handlers.NewCalculatorHandler().Routes())
	r.Mount("/bookings", handlers.NewBookingHandler(bookingSvc, sessions).Routes())
	r.Mount("/advisory", handlers.NewAdvisoryHandler(advisorySvc, sessions).Routes())
	r.Mount("/ledger", handlers.NewLedgerHandler(ledgerSvc, sessions).Routes())
	r.Mount("/learning", handlers.NewLearningHandler(learningSvc, sessions).Routes())
	r.Mount("/market", handlers.NewMarketHandler(marketSvc).Routes())
	r.Mount("/weather", handlers.NewWeatherHandler(weatherSvc, authSvc, sessions).Routes())
	r.Mount("/admin", handlers.NewAdminHandler(adminSvc, learningSvc, marketSvc, sessions, cfg.Media.UploadDir).Routes())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting API server", "port", cfg.Server.Port, "env", cfg.App.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// newStore picks the OTP/session backend. Redis keeps sessions across
// restarts; the in-process map is fine for single-instance dev.
func newStore(ctx context.Context, cfg *config.Config) (kv.Store, func()) {
	if cfg.Redis.Enabled {
		rs, err := kv.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to configure redis", "error", err)
			os.Exit(1)
		}
		if err := rs.Ping(ctx); err != nil {
			logger.Error("Failed to reach redis", "error", err)
			os.Exit(1)
		}
		return rs, func() { _ = rs.Close() }
	}

	ms := kv.NewMemoryStore()
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ms.Sweep()
			case <-done:
				return
			}
		}
	}()
	return ms, func() { close(done) }
}

func newEventBus(cfg *config.Config) events.EventBus {
	if cfg.NATS.URL == "" {
		return events.NopEventBus{}
	}
	bus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
		return events.NopEventBus{}
	}
	return bus
}
