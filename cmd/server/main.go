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

	"github.com/gin-gonic/gin"
	"github.com/printbroker/backend/internal/application/brokerage"
	"github.com/printbroker/backend/internal/domain/finance"
	"github.com/printbroker/backend/internal/domain/shared"
	"github.com/printbroker/backend/internal/infrastructure/cache"
	"github.com/printbroker/backend/internal/infrastructure/config"
	"github.com/printbroker/backend/internal/infrastructure/event"
	"github.com/printbroker/backend/internal/infrastructure/logger"
	"github.com/printbroker/backend/internal/infrastructure/notification"
	"github.com/printbroker/backend/internal/infrastructure/persistence"
	"github.com/printbroker/backend/internal/infrastructure/telemetry"
	"github.com/printbroker/backend/internal/interfaces/http/handler"
	"github.com/printbroker/backend/internal/interfaces/http/middleware"
	"github.com/printbroker/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry providers come first so the bridged logger can export
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = loggerProvider.Shutdown(shutdownCtx)
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = tracerProvider.Shutdown(shutdownCtx)
	}()

	log := telemetry.NewBridgedLogger(baseLog, cfg.Telemetry.ServiceName, loggerProvider, logger.ParseLevel(cfg.Log.Level))
	profiler, err := telemetry.NewProfiler(cfg.Profiling, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Error stopping profiler", zap.Error(err))
		}
	}()
	if profiler.IsEnabled() && cfg.Profiling.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	log.Info("Starting print brokerage backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Database.SlowQueryThreshold))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.TraceDB {
		if err := telemetry.RegisterDBTracing(db.DB, telemetry.DefaultDBTracingConfig(), log); err != nil {
			log.Warn("Database tracing disabled", zap.Error(err))
		}
	}
	log.Info("Database connected successfully")

	// Services
	settings := brokerage.Settings{
		BuyerCompanyID: cfg.Brokerage.BuyerCompanyID,
		SplitPolicy: finance.SplitPolicy{
			PartnerShare:            cfg.Split.PartnerShare,
			DirectIntermediaryShare: cfg.Split.DirectIntermediaryShare,
			DirectBuyerShare:        cfg.Split.DirectBuyerShare,
		},
		MailingKeywords: cfg.Brokerage.MailingKeywords,
	}

	scope := persistence.NewGormTransactionScope(db.DB)
	splitService := brokerage.NewProfitSplitService(scope, settings, log)
	pathwayService := brokerage.NewPathwayService(scope, settings, log)
	executionService := brokerage.NewExecutionIdentityService(scope, log)
	readinessService := brokerage.NewReadinessService(scope, settings, log)
	jobService := brokerage.NewJobService(scope, splitService, pathwayService, log)
	purchaseOrderService := brokerage.NewPurchaseOrderService(scope, settings, splitService, pathwayService, log)
	vendorService := brokerage.NewVendorService(scope, log)

	var metrics *telemetry.BrokerageMetrics
	if meterProvider.IsEnabled() {
		metrics, err = telemetry.NewBrokerageMetrics(meterProvider.Meter("printbroker/brokerage"), log)
		if err != nil {
			log.Warn("Business metrics disabled", zap.Error(err))
			metrics = nil
		}
	}
	splitService.SetBusinessMetrics(metrics)
	pathwayService.SetBusinessMetrics(metrics)
	executionService.SetBusinessMetrics(metrics)
	readinessService.SetBusinessMetrics(metrics)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	for _, publisherAware := range []interface {
		SetEventPublisher(shared.EventPublisher)
	}{pathwayService, readinessService, jobService, purchaseOrderService} {
		publisherAware.SetEventPublisher(eventBus)
	}
	if err := eventBus.Start(ctx); err != nil {
		return fmt.Errorf("start event bus: %w", err)
	}
	defer func() {
		_ = eventBus.Stop(context.Background())
	}()

	group, groupCtx := errgroup.WithContext(ctx)

	// Vendor notifications
	if cfg.Notification.Enabled {
		worker, closeNotifications, err := setupNotifications(groupCtx, cfg, db, eventBus, metrics, log)
		if err != nil {
			return err
		}
		defer closeNotifications()
		group.Go(func() error {
			return worker.Run(groupCtx)
		})
	}

	// Outbox delivery starts once every subscriber is on the bus
	outboxConfig := event.OutboxProcessorConfig{
		BatchSize:        cfg.Outbox.BatchSize,
		PollInterval:     cfg.Outbox.PollInterval,
		CleanupEnabled:   cfg.Outbox.CleanupRetention > 0,
		CleanupRetention: cfg.Outbox.CleanupRetention,
		CleanupInterval:  cfg.Outbox.CleanupInterval,
	}
	outboxProcessor := event.NewOutboxProcessor(event.NewGormOutboxRepository(db.DB), eventBus,
		event.NewBrokerageEventSerializer(), outboxConfig, log)
	if err := outboxProcessor.Start(groupCtx); err != nil {
		return fmt.Errorf("start outbox processor: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := outboxProcessor.Stop(stopCtx); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var serviceName string
	if tracerProvider.IsEnabled() {
		serviceName = cfg.Telemetry.ServiceName
	}
	engine := router.NewEngine(router.EngineOptions{
		Logger:      log,
		ServiceName: serviceName,
		Meter:       meterProvider.Meter("printbroker/http"),
		CORS: middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
			MaxAge:       12 * time.Hour,
		},
		MaxBodySize:     cfg.HTTP.MaxBodySize,
		TrustedProxies:  cfg.HTTP.TrustedProxies,
		ProfilingLabels: profiler.IsEnabled() && cfg.Profiling.RequestLabels,
	})

	systemHandler := handler.NewSystemHandler(db, version)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/api/v1/ping", systemHandler.Ping)

	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(router.BrokerageRoutes(router.Handlers{
			Jobs:           handler.NewJobHandler(jobService),
			Readiness:      handler.NewReadinessHandler(readinessService),
			ProfitSplits:   handler.NewProfitSplitHandler(splitService, pathwayService),
			PurchaseOrders: handler.NewPurchaseOrderHandler(purchaseOrderService, executionService),
			Vendors:        handler.NewVendorHandler(vendorService),
		})...).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	group.Go(func() error {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return err
	}
	log.Info("Server exited gracefully")
	return nil
}

// setupNotifications subscribes the queue publisher to the bus and builds
// the worker that emails vendors. The returned func releases queue and store
// connections.
func setupNotifications(ctx context.Context, cfg *config.Config, db *persistence.Database, bus *event.InMemoryEventBus, metrics *telemetry.BrokerageMetrics, log *zap.Logger) (*notification.Worker, func(), error) {
	redisOpt := notification.RedisClientOpt(cfg.Redis)

	client := notification.NewClient(redisOpt, cfg.Notification, log)
	bus.Subscribe(notification.NewExecutionAssignedSubscriber(client))

	store, err := cache.NewIdempotencyStoreFactory(cfg.Redis, cfg.Notification.IdempotencyBackend,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	notifier := notification.NewVendorNotifier(
		persistence.NewGormVendorRepository(db.DB),
		persistence.NewGormJobRepository(db.DB),
		notification.NewSender(cfg.Notification.SMTP, log),
		log,
	)
	notifier.SetBusinessMetrics(metrics)
	idempotencyCfg := shared.DefaultIdempotencyConfig()
	if cfg.Notification.IdempotencyTTL > 0 {
		idempotencyCfg.TTL = cfg.Notification.IdempotencyTTL
	}
	worker := notification.NewWorker(redisOpt, cfg.Notification,
		event.NewIdempotentHandler(notifier, store, log, event.WithIdempotencyConfig(idempotencyCfg)),
		log,
	)

	log.Info("Vendor notifications enabled",
		zap.String("queue", cfg.Notification.Queue),
		zap.String("idempotency_backend", cfg.Notification.IdempotencyBackend),
	)
	return worker, func() {
		_ = client.Close()
		_ = store.Close()
	}, nil
}
