package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Aswindil12/algus-turf/internal/di"
	"github.com/Aswindil12/algus-turf/internal/gateway"
	"github.com/Aswindil12/algus-turf/internal/metrics"
	"github.com/Aswindil12/algus-turf/internal/repository"
	"github.com/Aswindil12/algus-turf/internal/service"
	"github.com/Aswindil12/algus-turf/internal/worker"
	"github.com/Aswindil12/algus-turf/pkg/config"
	"github.com/Aswindil12/algus-turf/pkg/database"
	"github.com/Aswindil12/algus-turf/pkg/logger"
	"github.com/Aswindil12/algus-turf/pkg/middleware"
	pkgredis "github.com/Aswindil12/algus-turf/pkg/redis"
	"github.com/Aswindil12/algus-turf/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting turf booking service...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Warn(fmt.Sprintf("Telemetry init failed, traces disabled: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
		}
	}()

	// Initialize metric instruments
	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics init failed: %v", err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:          cfg.Redis.Host,
		Port:          cfg.Redis.Port,
		Password:      cfg.Redis.Password,
		DB:            cfg.Redis.DB,
		PoolSize:      cfg.Redis.PoolSize,
		MinIdleConns:  cfg.Redis.MinIdleConns,
		MaxRetries:    3,
		RetryInterval: 100 * time.Millisecond,
		DialTimeout:   cfg.Redis.DialTimeout,
		ReadTimeout:   cfg.Redis.ReadTimeout,
		WriteTimeout:  cfg.Redis.WriteTimeout,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info("Redis connected")

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		})
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			eventPublisher = kafkaPublisher
			appLog.Info("Kafka event publisher connected")
		}
	}
	defer eventPublisher.Close()

	// Initialize payment gateway
	paymentGateway, err := buildPaymentGateway(cfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Payment gateway init failed: %v", err))
	}
	appLog.Info(fmt.Sprintf("Payment gateway ready: %s", paymentGateway.Name()))

	// Initialize repositories
	bookingRepo := repository.NewPostgresBookingRepository(db.Pool(), cfg.Booking.SharedField)
	userRepo := repository.NewPostgresUserRepository(db.Pool())
	slotHoldRepo := repository.NewRedisSlotHoldRepository(redisClient, cfg.Booking.SharedField)

	// Pre-load Lua scripts into Redis
	if err := slotHoldRepo.LoadScripts(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Failed to pre-load Lua scripts: %v", err))
	} else {
		appLog.Info("Lua scripts pre-loaded into Redis")
	}

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		BookingRepo:    bookingRepo,
		UserRepo:       userRepo,
		SlotHoldRepo:   slotHoldRepo,
		PaymentGateway: paymentGateway,
		EventPublisher: eventPublisher,
		SharedField:    cfg.Booking.SharedField,
		BookingConfig: &service.BookingServiceConfig{
			PaymentTimeout: cfg.Booking.PaymentTimeout,
			Currency:       cfg.Payment.Currency,
		},
		AuthConfig: &service.AuthServiceConfig{
			JWTSecret:         cfg.JWT.Secret,
			AccessTokenExpiry: cfg.JWT.AccessTokenTTL,
		},
	})

	// Start payment timeout worker
	timeoutWorker := worker.NewPaymentTimeoutWorker(container.BookingService, &worker.PaymentTimeoutWorkerConfig{
		ScanInterval: cfg.Booking.TimeoutScanInterval,
		BatchSize:    cfg.Booking.TimeoutBatchSize,
	})
	if err := timeoutWorker.Start(ctx); err != nil {
		appLog.Fatal(fmt.Sprintf("Failed to start payment timeout worker: %v", err))
	}
	defer timeoutWorker.Stop()

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		gin.DisableConsoleColor()
	}

	router := setupRouter(cfg, db, container)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Turf booking service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	timeoutWorker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

// buildPaymentGateway builds the configured payment gateway
func buildPaymentGateway(cfg *config.Config) (gateway.PaymentGateway, error) {
	if cfg.Payment.Gateway == string(gateway.GatewayTypeMock) || cfg.Payment.Gateway == "" {
		return gateway.NewMockGateway(&gateway.MockGatewayConfig{
			SuccessRate: cfg.Payment.MockSuccessRate,
			DelayMs:     cfg.Payment.MockDelayMs,
		}), nil
	}

	return gateway.NewPaymentGateway(cfg.Payment.Gateway, &gateway.GatewayConfig{
		SecretKey:   cfg.Payment.StripeSecretKey,
		Environment: cfg.App.Environment,
	})
}

// setupRouter wires middleware and routes
func setupRouter(cfg *config.Config, db *database.PostgresDB, container *di.Container) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(metrics.RequestMetrics())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	// Pool stats for monitoring
	router.GET("/metrics", func(c *gin.Context) {
		stats := db.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db_pool": gin.H{
				"total_conns":    stats.TotalConns(),
				"acquired_conns": stats.AcquiredConns(),
				"idle_conns":     stats.IdleConns(),
				"max_conns":      stats.MaxConns(),
			},
		})
	})

	// Token validation adapter for auth middleware
	validateToken := func(ctx context.Context, token string) (string, string, error) {
		claims, err := container.AuthService.ValidateToken(ctx, token)
		if err != nil {
			return "", "", err
		}
		return claims.UserID, claims.Role, nil
	}

	// Idempotency for booking write operations. Callers opt in by sending
	// the X-Idempotency-Key header.
	idempotent := middleware.IdempotencyMiddleware(middleware.DefaultIdempotencyConfig(container.Redis))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", container.AuthHandler.Register)
			auth.POST("/login", container.AuthHandler.Login)
			auth.GET("/me", middleware.Auth(validateToken), container.AuthHandler.Me)
		}

		api.GET("/availability", container.BookingHandler.GetAvailability)
		api.GET("/pricing/quote", container.BookingHandler.GetQuote)

		bookings := api.Group("/bookings")
		{
			bookings.POST("", idempotent, container.BookingHandler.CreateBooking)
			bookings.GET("/:id", container.BookingHandler.GetBooking)
			bookings.POST("/:id/confirm", idempotent, container.BookingHandler.ConfirmBooking)
			bookings.POST("/:id/cancel", idempotent, container.BookingHandler.CancelBooking)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(validateToken), middleware.RequireRole("admin"))
		{
			admin.GET("/dashboard", container.AdminHandler.GetDashboard)
			admin.GET("/reports", container.AdminHandler.GetReport)
			admin.GET("/bookings", container.AdminHandler.ListBookings)
			admin.GET("/bookings/export", container.AdminHandler.ExportBookings)
		}
	}

	return router
}
