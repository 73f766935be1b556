package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	billingapp "github.com/verone/backend/internal/application/billing"
	storageapp "github.com/verone/backend/internal/application/storage"
	tradeapp "github.com/verone/backend/internal/application/trade"
	"github.com/verone/backend/internal/infrastructure/cache"
	"github.com/verone/backend/internal/infrastructure/config"
	"github.com/verone/backend/internal/infrastructure/event"
	"github.com/verone/backend/internal/infrastructure/logger"
	"github.com/verone/backend/internal/infrastructure/persistence"
	"github.com/verone/backend/internal/infrastructure/telemetry"
	"github.com/verone/backend/internal/interfaces/http/handler"
	"github.com/verone/backend/internal/interfaces/http/middleware"
	"github.com/verone/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Verone Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize tracing
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Initialize metrics
	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
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

	// Register database query tracing
	if cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:          true,
			LogFullSQL:       cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh:  cfg.Telemetry.DBSlowQueryThresh,
			DBSystem:         "postgresql",
			WithoutVariables: !cfg.Telemetry.DBLogFullSQL,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	salesOrderRepo := persistence.NewGormSalesOrderRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	storageEventRepo := persistence.NewGormEventRepository(db.DB)
	numberGenerator := persistence.NewGormDocumentNumberGenerator(db.DB)

	// Initialize event bus and audit trail
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewAuditLogHandler(log))

	// Initialize application services
	documentService := billingapp.NewDocumentService(documentRepo, salesOrderRepo, numberGenerator)
	documentService.SetEventPublisher(eventBus)

	salesOrderService := tradeapp.NewSalesOrderService(salesOrderRepo)
	salesOrderService.SetEventPublisher(eventBus)

	meteringService := storageapp.NewMeteringService(allocationRepo, storageEventRepo)
	if cfg.Metering.CacheEnabled {
		if cfg.Redis.Host != "" {
			redisCache, err := cache.NewRedisMeterCache(cache.RedisConfig{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}, cfg.Metering.CacheTTL, log)
			if err != nil {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			defer func() {
				if err := redisCache.Close(); err != nil {
					log.Error("Error closing Redis cache", zap.Error(err))
				}
			}()
			meteringService.SetCache(redisCache)
			log.Info("Metering cache enabled", zap.String("backend", "redis"))
		} else {
			memCache := cache.NewInMemoryMeterCache(cfg.Metering.CacheTTL)
			defer func() {
				_ = memCache.Close()
			}()
			meteringService.SetCache(memCache)
			log.Info("Metering cache enabled", zap.String("backend", "memory"))
		}
	}

	// Periodic storage volume metrics
	var businessMetrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		businessMetrics, err = telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:           meterProvider.Meter("verone.business"),
			Logger:          log,
			StorageProvider: persistence.NewGormStorageMetricsProvider(db.DB),
		})
		if err != nil {
			log.Fatal("Failed to initialize business metrics", zap.Error(err))
		}
		businessMetrics.StartPeriodicCollection(context.Background(), 5*time.Minute)
		defer businessMetrics.Stop()
	}

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(documentService)
	quoteHandler := handler.NewQuoteHandler(documentService)
	orderHandler := handler.NewOrderHandler(salesOrderService)
	storageHandler := handler.NewStorageHandler(meteringService)
	systemHandler := handler.NewSystemHandler(version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, security
	// headers, CORS, body limit, tracing
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Invoice lifecycle
	invoiceRoutes := router.NewDomainGroup("invoices", "/invoices")
	invoiceRoutes.POST("", invoiceHandler.Create)
	invoiceRoutes.POST("/from-order/:order_id", invoiceHandler.CreateFromOrder)
	invoiceRoutes.POST("/import", invoiceHandler.Import)
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/number/:number", invoiceHandler.GetByNumber)
	invoiceRoutes.GET("/:id", invoiceHandler.GetByID)
	invoiceRoutes.POST("/:id/validate", invoiceHandler.Validate)
	invoiceRoutes.POST("/:id/finalize", invoiceHandler.Finalize)
	invoiceRoutes.POST("/:id/send", invoiceHandler.Send)
	invoiceRoutes.POST("/:id/pay", invoiceHandler.Pay)
	invoiceRoutes.POST("/:id/cancel", invoiceHandler.Cancel)

	// Quote lifecycle
	quoteRoutes := router.NewDomainGroup("quotes", "/quotes")
	quoteRoutes.POST("", quoteHandler.Create)
	quoteRoutes.POST("/from-order/:order_id", quoteHandler.CreateFromOrder)
	quoteRoutes.GET("", quoteHandler.List)
	quoteRoutes.GET("/number/:number", quoteHandler.GetByNumber)
	quoteRoutes.GET("/:id", quoteHandler.GetByID)
	quoteRoutes.POST("/:id/finalize", quoteHandler.Finalize)
	quoteRoutes.POST("/:id/send", quoteHandler.Send)
	quoteRoutes.POST("/:id/convert", quoteHandler.Convert)
	quoteRoutes.POST("/:id/cancel", quoteHandler.Cancel)

	// Sales orders
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.POST("", orderHandler.Create)
	orderRoutes.GET("", orderHandler.List)
	orderRoutes.GET("/number/:number", orderHandler.GetByNumber)
	orderRoutes.GET("/:id", orderHandler.GetByID)
	orderRoutes.POST("/:id/items", orderHandler.AddItem)
	orderRoutes.PUT("/:id/service-fees", orderHandler.SetServiceFees)
	orderRoutes.POST("/:id/validate", orderHandler.Validate)
	orderRoutes.POST("/:id/ship", orderHandler.Ship)
	orderRoutes.POST("/:id/complete", orderHandler.Complete)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)

	// Storage allocations and usage metering
	storageRoutes := router.NewDomainGroup("storage", "/storage")
	storageRoutes.POST("/allocations", storageHandler.CreateAllocation)
	storageRoutes.GET("/allocations/:id", storageHandler.GetAllocation)
	storageRoutes.PUT("/allocations/:id/quantity", storageHandler.UpdateQuantity)
	storageRoutes.POST("/allocations/:id/toggle-billable", storageHandler.ToggleBillable)
	storageRoutes.DELETE("/allocations/:id", storageHandler.DeleteAllocation)
	storageRoutes.GET("/owners/:owner_type/:owner_id/allocations", storageHandler.ListAllocations)
	storageRoutes.GET("/owners/:owner_type/:owner_id/events", storageHandler.ListEvents)
	storageRoutes.GET("/owners/:owner_type/:owner_id/usage", storageHandler.GetOwnerUsage)
	storageRoutes.GET("/owners/:owner_type/:owner_id/meter", storageHandler.Meter)

	// System routes
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(invoiceRoutes).
		Register(quoteRoutes).
		Register(orderRoutes).
		Register(storageRoutes).
		Register(systemRoutes)

	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		}
		if stats, err := db.Stats(); err == nil {
			body["db_pool"] = gin.H{
				"open":   stats.OpenConnections,
				"in_use": stats.InUse,
				"idle":   stats.Idle,
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
