package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	earningapp "github.com/affiliate/backend/internal/application/earning"
	partnerapp "github.com/affiliate/backend/internal/application/partner"
	payoutapp "github.com/affiliate/backend/internal/application/payout"
	referralapp "github.com/affiliate/backend/internal/application/referral"
	"github.com/affiliate/backend/internal/domain/payout"
	"github.com/affiliate/backend/internal/infrastructure/auth"
	"github.com/affiliate/backend/internal/infrastructure/cache"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/event"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/metrics"
	"github.com/affiliate/backend/internal/infrastructure/payment"
	"github.com/affiliate/backend/internal/infrastructure/persistence"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/affiliate/backend/internal/interfaces/http/handler"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/affiliate/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Log export has to exist before the logger so the bridge core can be teed in
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogExportEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	})
	if err != nil {
		panic("Failed to initialize log export: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logProvider.Shutdown(context.Background(), log)
		_ = log.Sync()
	}()

	log.Info("Starting affiliate backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Tracer provider shutdown failed", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.DefaultDBTracingConfig()
		dbTracing.Enabled = true
		dbTracing.LogFullSQL = cfg.Telemetry.DBLogFullSQL
		dbTracing.DBName = cfg.Database.DBName
		if cfg.Telemetry.DBSlowQueryThresh > 0 {
			dbTracing.SlowQueryThresh = cfg.Telemetry.DBSlowQueryThresh
		}
		if err := telemetry.RegisterDBTracing(db.DB, dbTracing, log); err != nil {
			log.Fatal("Failed to register database tracing", zap.Error(err))
		}
	}

	// Repositories
	txScope := persistence.NewGormTransactionScope(db.DB)
	profileRepo := persistence.NewGormPartnerProfileRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	referralRepo := persistence.NewGormReferralRepository(db.DB)
	timelineRepo := persistence.NewGormReferralTimelineRepository(db.DB)
	earningRepo := persistence.NewGormEarningRepository(db.DB)
	payoutRepo := persistence.NewGormPayoutRepository(db.DB)
	settingRepo := persistence.NewGormPayoutSettingRepository(db.DB)

	processors, err := payment.NewDefaultRegistry(map[payout.PaymentMethod]payment.GatewayConfig{
		payout.MethodPayPal: gatewayConfig(cfg.Payment.PayPal),
		payout.MethodStripe: gatewayConfig(cfg.Payment.Stripe),
		payout.MethodMpesa:  gatewayConfig(cfg.Payment.Mpesa),
	}, log)
	if err != nil {
		log.Fatal("Failed to configure payment gateways", zap.Error(err))
	}

	// Application services
	profileService := partnerapp.NewProfileService(profileRepo)
	productService := referralapp.NewProductService(productRepo)
	referralService := referralapp.NewReferralService(txScope, referralRepo, timelineRepo, productRepo, profileRepo)
	earningService := earningapp.NewEarningService(txScope, earningRepo)
	payoutService := payoutapp.NewPayoutService(txScope, payoutRepo, processors)
	settingsService := payoutapp.NewSettingsService(txScope, settingRepo)

	idempotencyStore, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithKeyPrefix(cfg.Payout.IdempotencyKeyPrefix),
		cache.WithInMemoryFallback(!cfg.IsProduction()),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()
	payoutService.SetIdempotencyStore(idempotencyStore, cfg.Payout.IdempotencyTTL)

	// Lifecycle events
	eventBus := event.NewInMemoryEventBus(log)

	var lifecycleMetrics *metrics.LifecycleMetrics
	if cfg.Metrics.Enabled {
		lifecycleMetrics = metrics.New(cfg.Metrics.Namespace)
		eventBus.Subscribe(lifecycleMetrics)
		sqlDB, err := db.SQL()
		if err != nil {
			log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
		}
		if err := lifecycleMetrics.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			log.Fatal("Failed to register database pool metrics", zap.Error(err))
		}
	}

	if cfg.Kafka.Enabled {
		serializer := event.NewEventSerializer()
		event.RegisterLifecycleEvents(serializer)
		kafkaPublisher, err := event.NewKafkaPublisher(event.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, serializer, log)
		if err != nil {
			log.Fatal("Failed to create Kafka publisher", zap.Error(err))
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.Error("Error closing Kafka publisher", zap.Error(err))
			}
		}()
		eventBus.Subscribe(event.NewIdempotentHandler(kafkaPublisher, idempotencyStore, log))
		log.Info("Kafka lifecycle stream enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	referralService.SetEventPublisher(eventBus)
	earningService.SetEventPublisher(eventBus)
	payoutService.SetEventPublisher(eventBus)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.Config{
		Logger: log,
		Auth: middleware.JWTMiddlewareConfig{
			JWTService: auth.NewJWTService(cfg.JWT),
			Resolver:   profileService,
		},
		CORS: cors,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Metrics:        lifecycleMetrics,
		MetricsPath:    cfg.Metrics.Path,
		APIDocs:        cfg.HTTP.APIDocs,
		Version:        version,
	}, router.Handlers{
		System:         handler.NewSystemHandler(version, handler.PingFunc(db.PingContext)),
		Partner:        handler.NewPartnerHandler(profileService),
		Product:        handler.NewProductHandler(productService),
		Referral:       handler.NewReferralHandler(referralService),
		Earning:        handler.NewEarningHandler(earningService),
		Payout:         handler.NewPayoutHandler(payoutService),
		PayoutSettings: handler.NewPayoutSettingsHandler(settingsService),
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serveErr:
		if err != nil {
			log.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

func gatewayConfig(c config.GatewayConfig) payment.GatewayConfig {
	return payment.GatewayConfig{BaseURL: c.BaseURL, APIKey: c.APIKey, Timeout: c.Timeout}
}
