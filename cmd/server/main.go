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
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AnshRaj112/lebdoc-backend/internal/config"
	"github.com/AnshRaj112/lebdoc-backend/internal/database"
	"github.com/AnshRaj112/lebdoc-backend/internal/handlers"
	"github.com/AnshRaj112/lebdoc-backend/internal/middleware"
	"github.com/AnshRaj112/lebdoc-backend/internal/routes"
	"github.com/AnshRaj112/lebdoc-backend/internal/services"
	"github.com/AnshRaj112/lebdoc-backend/internal/store"
	"github.com/AnshRaj112/lebdoc-backend/pkg/utils"
)

func newLogger(production bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore connects the configured key-value backend. The returned client is non-nil
// whenever Redis is reachable, so notifications and rate limiting can share it.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, *redis.Client, error) {
	switch cfg.StoreDriver {
	case "redis":
		if err := database.ConnectRedis(cfg.RedisURI, logger); err != nil {
			return nil, nil, err
		}
		return store.NewRedis(database.RedisClient), database.RedisClient, nil
	case "postgres":
		if err := database.ConnectPostgres(cfg.PostgresURI, logger); err != nil {
			return nil, nil, err
		}
		// Redis stays optional next to Postgres.
		var client *redis.Client
		if os.Getenv("REDIS_URI") != "" {
			if err := database.ConnectRedis(cfg.RedisURI, logger); err != nil {
				logger.Warn("Redis unavailable, notifications stay in-process", zap.Error(err))
			} else {
				client = database.RedisClient
			}
		}
		return store.NewPostgres(database.PostgresDB), client, nil
	case "memory", "":
		logger.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil, nil
	}
	return nil, nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
}

// startPurge removes expired kv_store rows every hour until ctx is cancelled.
func startPurge(ctx context.Context, logger *zap.Logger) {
	ticker := time.NewTicker(time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := database.PurgeExpired(database.PostgresDB)
				if err != nil {
					logger.Warn("failed to purge expired rows", zap.Error(err))
					continue
				}
				if n > 0 {
					logger.Info("purged expired rows", zap.Int64("rows", n))
				}
			}
		}
	}()
}

func main() {
	// Load env
	envErr := godotenv.Load()
	cfg := config.Load()

	logger := newLogger(cfg.IsProduction())
	defer logger.Sync()
	if envErr != nil {
		logger.Info("no .env file found")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, redisClient, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer database.DisconnectRedis()
	defer database.DisconnectPostgres()
	if cfg.StoreDriver == "postgres" {
		startPurge(ctx, logger)
	}

	// Analytics event log: Mongo when configured, otherwise the key-value store
	var events services.EventLog
	if cfg.MongoURI != "" {
		if err := database.Connect(cfg.MongoURI, logger); err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer database.Disconnect()
		mongoLog := services.NewMongoEventLog(database.DB, logger)
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := mongoLog.EnsureIndexes(idxCtx); err != nil {
			logger.Warn("failed to ensure analytics indexes", zap.Error(err))
		}
		cancel()
		events = mongoLog
	} else {
		events = services.NewStoreEventLog(kv, logger)
	}

	hub := services.NewHub(logger)
	var notifier services.Notifier
	if redisClient != nil {
		rn := services.NewRedisNotifier(redisClient, hub, logger)
		rn.Start(ctx)
		notifier = rn
	} else {
		notifier = services.NewLocalNotifier(hub)
	}

	cipher, err := utils.NewCipher(cfg.EncryptionKey)
	if err != nil {
		logger.Fatal("invalid ENCRYPTION_KEY", zap.Error(err))
	}
	if cipher == nil {
		logger.Warn("ENCRYPTION_KEY not set, messages are stored in plaintext")
	}

	pricing := services.Pricing{
		Monthly:    cfg.MonthlyPrice,
		Yearly:     cfg.YearlyPrice,
		Commission: cfg.AffiliateCommission,
	}

	doctors := services.NewDoctorService(kv, cfg.DefaultDoctorImage, logger)
	activities := services.NewActivityService(kv, logger)
	reviews := services.NewReviewService(kv, doctors, activities, notifier, logger)
	messages := services.NewMessageService(kv, doctors, activities, notifier, cipher, logger)
	affiliates := services.NewAffiliateService(kv, doctors, pricing, cfg.PublicURL, logger)
	sessions := services.NewSessionService(kv)
	auth := services.NewAuthService(kv, sessions, doctors,
		services.FixedAccount{Identifier: cfg.AdminIdentifier, Password: cfg.AdminPassword},
		services.FixedAccount{Identifier: cfg.GuestIdentifier, Password: cfg.GuestPassword},
		logger)
	tracking := services.NewTrackingService(doctors, events, logger)
	reports := services.NewReportService(doctors, reviews, messages, affiliates, events, logger)
	subscriptions := services.NewSubscriptionService(doctors, services.NewMockGateway(),
		services.PriceIDs{Monthly: cfg.MonthlyPriceID, Yearly: cfg.YearlyPriceID}, logger)
	patients := services.NewPatientService(kv, doctors, activities, reviews, messages, cfg.PublicURL, logger)

	if cfg.SeedDoctors {
		seedCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		seeded, err := doctors.Seed(seedCtx)
		cancel()
		if err != nil {
			logger.Fatal("failed to seed directory", zap.Error(err))
		}
		if seeded {
			logger.Info("seeded doctor directory")
		}
	}

	h := &handlers.Handler{
		Auth:          auth,
		Doctors:       doctors,
		Reviews:       reviews,
		Messages:      messages,
		Tracking:      tracking,
		Reports:       reports,
		Affiliates:    affiliates,
		Subscriptions: subscriptions,
		Patients:      patients,
		Consent:       services.NewConsentService(kv),
		Hub:           hub,
		Logger:        logger,
	}

	// Initialize Cloudinary service
	if cfg.CloudinaryConfigured() {
		uploader, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Warn("failed to initialize Cloudinary, uploads disabled", zap.Error(err))
		} else {
			h.Uploader = uploader
			logger.Info("Cloudinary service initialized")
		}
	} else {
		logger.Warn("Cloudinary credentials not found, uploads disabled")
	}

	scheduler := services.NewScheduler(affiliates, subscriptions, tracking, logger)
	if err := scheduler.Start(cfg.SchedulerSpec); err != nil {
		logger.Fatal("invalid SCHEDULER_SPEC", zap.String("spec", cfg.SchedulerSpec), zap.Error(err))
	}
	defer scheduler.Stop()

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		logger.Info("production security enabled", zap.String("allowed_host", cfg.AllowedHost))
	}

	routes.SetupRoutes(r, h, redisClient)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("LebDoc backend running", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
