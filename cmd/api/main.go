package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmlink_backend/internal/activities"
	"farmlink_backend/internal/adapters"
	"farmlink_backend/internal/adapters/storage"
	"farmlink_backend/internal/auth"
	"farmlink_backend/internal/email"
	"farmlink_backend/internal/exchange"
	"farmlink_backend/internal/households"
	apphttp "farmlink_backend/internal/http"
	"farmlink_backend/internal/http/router"
	"farmlink_backend/internal/labor"
	"farmlink_backend/internal/notification"
	"farmlink_backend/internal/orders"
	"farmlink_backend/internal/products"
	"farmlink_backend/internal/scheduler"
	"farmlink_backend/internal/weather"
	"farmlink_backend/migrations"
	"farmlink_backend/platform/config"
	"farmlink_backend/platform/db"
	"farmlink_backend/platform/events"
	"farmlink_backend/platform/logger"
	"farmlink_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	sender := initEmailSender(cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for listing photos (MinIO)
	var storageSvc storage.Service
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure listing photos bucket", 5, 2*time.Second, func() error {
			return minioSvc.EnsureBucketExists(ctx, cfg.GetMinioBucketListingPhotos())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketListingPhotos())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		storageSvc = minioSvc
		log.Info("storage service initialized", "listingPhotosBucket", cfg.GetMinioBucketListingPhotos())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; product photo uploads disabled")
	}

	redisClient := initRedisClient(cfg, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	householdsModule := households.NewModule(pool, val, log)
	exchangeModule := exchange.NewModule(pool, eventBus, val, log)

	// The labor and activities modules each hold a port onto the other, so
	// the activity side is bound after both are constructed.
	activityStatus := adapters.NewActivityStatusAdapter()
	laborModule := labor.NewModule(
		pool,
		adapters.NewHouseholdDirectoryAdapter(householdsModule.Service()),
		adapters.NewLedgerAdapter(exchangeModule.Service()),
		activityStatus,
		eventBus,
		val,
		log,
	)
	activitiesModule := activities.NewModule(pool, adapters.NewLaborSyncAdapter(laborModule.Service()), val, log)
	activityStatus.Bind(activitiesModule.Service())

	authModule := auth.NewModule(
		pool,
		cfg,
		adapters.NewHouseholdResolverAdapter(householdsModule.Service()),
		sender,
		val,
		log,
	)

	productsModule := products.NewModule(pool, storageSvc, cfg.GetMinioBucketListingPhotos(), val, log)
	ordersModule := orders.NewModule(pool, adapters.NewProductCatalogAdapter(productsModule.Service()), eventBus, val, log)
	weatherModule := weather.NewModule(cfg, redisClient, log)

	// Notification module subscribes to domain events and serves the in-app feed
	notificationModule := notification.New(pool, sender, log)
	notificationModule.RegisterHandlers(eventBus)

	closeReminders := initReminderDispatcher(cfg, eventBus, log)
	if closeReminders != nil {
		defer closeReminders()
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			householdsModule,
			laborModule,
			exchangeModule,
			activitiesModule,
			productsModule,
			ordersModule,
			weatherModule,
			notificationModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email sending disabled; using noop sender")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

func initRedisClient(cfg *config.Config, log *logger.Logger) *redis.Client {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; weather cache and reminders disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse redis URL", "error", err)
		return nil
	}
	return redis.NewClient(opt)
}

// initReminderDispatcher wires assignment reminder scheduling onto the event
// bus. Reminders degrade to nothing when redis is not configured.
func initReminderDispatcher(cfg config.SchedulerConfig, bus *events.InMemoryBus, log *logger.Logger) func() {
	if cfg.GetRedisURL() == "" {
		return nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil
	}

	scheduler.NewReminderDispatcher(client, log).RegisterHandlers(bus)
	return func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
