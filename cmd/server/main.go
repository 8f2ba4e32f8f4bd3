package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	catalogapp "github.com/stockroute/backend/internal/application/catalog"
	geoapp "github.com/stockroute/backend/internal/application/geo"
	identityapp "github.com/stockroute/backend/internal/application/identity"
	inventoryapp "github.com/stockroute/backend/internal/application/inventory"
	partnerapp "github.com/stockroute/backend/internal/application/partner"
	salesapp "github.com/stockroute/backend/internal/application/sales"
	"github.com/stockroute/backend/internal/infrastructure/auth"
	"github.com/stockroute/backend/internal/infrastructure/cache"
	"github.com/stockroute/backend/internal/infrastructure/config"
	"github.com/stockroute/backend/internal/infrastructure/event"
	"github.com/stockroute/backend/internal/infrastructure/jobs"
	"github.com/stockroute/backend/internal/infrastructure/logger"
	"github.com/stockroute/backend/internal/infrastructure/persistence"
	"github.com/stockroute/backend/internal/infrastructure/scheduler"
	"github.com/stockroute/backend/internal/infrastructure/spreadsheet"
	"github.com/stockroute/backend/internal/infrastructure/storage"
	"github.com/stockroute/backend/internal/infrastructure/telemetry"
	"github.com/stockroute/backend/internal/interfaces/http/handler"
	"github.com/stockroute/backend/internal/interfaces/http/middleware"
	"github.com/stockroute/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting StockRoute backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// OpenTelemetry export, no-op unless telemetry.enabled
	telemetryCfg := telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		MetricsInterval:   cfg.Telemetry.MetricsInterval,
		Logs:              cfg.Telemetry.LogsEnabled,
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	defer func() {
		if err := loggerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}()
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetryCfg, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()
	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  meterProvider.Meter(telemetry.TracerName),
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}

	// Database with a zap-backed GORM logger
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         tracerProvider.IsEnabled() && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err := dbTracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	// Redis backs locks, idempotency keys, login throttling and the job queue
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis", zap.Error(err))
			}
		}()
		log.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
	}

	// Initialize repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	geoRepo := persistence.NewGormGeoRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	batchRepo := persistence.NewGormBatchRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)
	geoTxScope := persistence.NewGormGeoTransactionScope(db.DB)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, jwtService, log)
	userService := identityapp.NewUserService(userRepo, geoRepo, log)
	geoService := geoapp.NewGeoService(geoRepo, geoTxScope, log)
	categoryService := catalogapp.NewCategoryService(categoryRepo)
	productService := catalogapp.NewProductService(productRepo, categoryRepo)
	supplyService := inventoryapp.NewSupplyService(txScope, cfg.Sales.MaxAttempts, log)
	alertService := inventoryapp.NewAlertService(productRepo, inventoryapp.AlertDefaults{
		LowStockThreshold:  cfg.Inventory.LowStockThreshold,
		ExpiringWithinDays: cfg.Inventory.ExpiringWithinDays,
		ExpiringMinQty:     cfg.Inventory.ExpiringMinQty,
	})
	retentionService := inventoryapp.NewRetentionService(batchRepo, orderRepo,
		cfg.Inventory.BatchRetention, cfg.Inventory.OrderRetention, log)
	saleBuilder := salesapp.NewSaleBuilder(txScope, cfg.Sales.MaxAttempts, log)
	saleQueries := salesapp.NewSaleQueryService(saleRepo)
	statsService := salesapp.NewStatsService(saleRepo, spreadsheet.NewWriter())
	clientService := partnerapp.NewClientService(clientRepo, geoRepo, userRepo, log)
	orderService := partnerapp.NewOrderService(orderRepo, clientRepo, saleBuilder, log)

	// Settlement serializes per sale through a distributed lock when redis is available
	var locker salesapp.Locker
	if redisClient != nil {
		locker = cache.NewRedisLocker(redisClient)
	}
	settlement := salesapp.NewSettlementProcessor(txScope, locker, cfg.Sales.SettlementLockTTL, cfg.Sales.MaxAttempts, log)

	saleBuilder.SetBusinessMetrics(businessMetrics)
	supplyService.SetBusinessMetrics(businessMetrics)
	settlement.SetBusinessMetrics(businessMetrics)

	// Invoices and product pictures go to object storage when it is configured
	var invoiceService *salesapp.InvoiceService
	if cfg.Storage.Enabled {
		objects, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		invoiceService = salesapp.NewInvoiceService(saleRepo, spreadsheet.NewWriter(), objects, log)
		productService.SetPictureUploader(objects)
		log.Info("Object storage enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	// Seed the first admin account
	if created, err := userService.SeedAdmin(ctx, cfg.Seed.AdminUsername, cfg.Seed.AdminPassword); err != nil {
		log.Fatal("Failed to seed admin user", zap.Error(err))
	} else if created {
		log.Info("Admin account created", zap.String("username", cfg.Seed.AdminUsername))
	}

	// Background jobs: asynq when the queue is enabled, otherwise an in-process sweeper
	var jobClient *jobs.Client
	if cfg.Queue.Enabled {
		redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB}
		jobClient = jobs.NewClient(redisOpt, cfg.Queue.MaxRetry)
		defer func() {
			if err := jobClient.Close(); err != nil {
				log.Error("Error closing job client", zap.Error(err))
			}
		}()

		var invoices jobs.InvoiceGenerator
		if invoiceService != nil {
			invoices = invoiceService
		}
		worker, err := jobs.NewWorker(jobs.WorkerConfig{
			RedisOpt:      redisOpt,
			Concurrency:   cfg.Queue.Concurrency,
			SweepInterval: cfg.Queue.SweepInterval,
			Handlers:      jobs.NewHandlers(clientService, invoices, retentionService, log),
			Logger:        log,
		})
		if err != nil {
			log.Fatal("Failed to create job worker", zap.Error(err))
		}
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			if err := worker.Run(ctx); err != nil {
				log.Error("Job worker failed", zap.Error(err))
			}
		}()
		defer func() { <-workerDone }()
	} else {
		retention, err := scheduler.NewRetentionScheduler(retentionService, log, scheduler.RetentionSchedulerConfig{
			Interval: cfg.Queue.SweepInterval,
		})
		if err != nil {
			log.Fatal("Failed to create retention scheduler", zap.Error(err))
		}
		if err := retention.Start(ctx); err != nil {
			log.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
		defer func() {
			if err := retention.Stop(context.Background()); err != nil {
				log.Error("Error stopping retention scheduler", zap.Error(err))
			}
		}()
	}

	// Event bus carries committed sales to their side effects
	eventBus := event.NewInMemoryEventBus(log)
	var enqueuer salesapp.TaskEnqueuer
	if jobClient != nil {
		enqueuer = jobClient
	}
	saleCreatedHandler := salesapp.NewSaleCreatedHandler(enqueuer, clientService, invoiceService != nil, log)
	eventBus.Subscribe(saleCreatedHandler)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	saleBuilder.SetEventPublisher(eventBus)
	log.Info("Event handlers registered", zap.Strings("sale_created_events", saleCreatedHandler.EventTypes()))

	// Idempotency keys and login throttling
	var idempotency handler.IdempotencyStore
	var loginLimiter middleware.Limiter
	if redisClient != nil {
		idempotency = cache.NewRedisIdempotencyStore(redisClient, cfg.Sales.IdempotencyTTL)
		if cfg.HTTP.LoginRateLimit > 0 {
			loginLimiter = cache.NewRedisRateLimiter(redisClient, cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
		}
	} else {
		idempotency = cache.NewMemoryIdempotencyStore(cfg.Sales.IdempotencyTTL)
		if cfg.HTTP.LoginRateLimit > 0 {
			memLimiter := middleware.NewRateLimiter(cfg.HTTP.LoginRateLimit, cfg.HTTP.LoginRateWindow)
			defer memLimiter.Close()
			loginLimiter = memLimiter
		}
	}

	// Health checks
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Options{
		HTTP:         cfg.HTTP,
		Tokens:       jwtService,
		LoginLimiter: loginLimiter,
		Tracing: middleware.TracingConfig{
			Enabled:     tracerProvider.IsEnabled(),
			ServiceName: cfg.Telemetry.ServiceName,
		},
		Logger: log,
	}, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Health:    handler.NewHealthHandler(checks),
		User:      handler.NewUserHandler(userService),
		Geo:       handler.NewGeoHandler(geoService),
		Category:  handler.NewCategoryHandler(categoryService),
		Product:   handler.NewProductHandler(productService),
		Inventory: handler.NewInventoryHandler(supplyService, alertService),
		Client:    handler.NewClientHandler(clientService),
		Order:     handler.NewOrderHandler(orderService),
		Sale:      handler.NewSaleHandler(saleBuilder, saleQueries, settlement, idempotency),
		Stats:     handler.NewStatsHandler(statsService),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
