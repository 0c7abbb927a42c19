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

	"github.com/Svg70/crypto-booking/internal/di"
	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/gateway"
	"github.com/Svg70/crypto-booking/internal/metrics"
	"github.com/Svg70/crypto-booking/internal/repository"
	"github.com/Svg70/crypto-booking/internal/service"
	"github.com/Svg70/crypto-booking/pkg/config"
	"github.com/Svg70/crypto-booking/pkg/database"
	"github.com/Svg70/crypto-booking/pkg/logger"
	"github.com/Svg70/crypto-booking/pkg/middleware"
	pkgredis "github.com/Svg70/crypto-booking/pkg/redis"
	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"github.com/gin-gonic/gin"
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
	appLog.Info("Starting booking engine...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = telemetry.Shutdown(shutdownCtx)
	}()

	if err := metrics.Init(); err != nil {
		appLog.Warn(fmt.Sprintf("Metrics initialization failed: %v", err))
	}

	generation := domain.Generation(cfg.Engine.Generation)
	appLog.Info(fmt.Sprintf("Engine generation: %d, storage: %s", generation, cfg.Engine.Storage))

	// Initialize storage
	var db *database.PostgresDB
	var accessRepo repository.AccessRepository
	var eventRepo repository.EventRepository
	var bookingRepo repository.BookingRepository

	if cfg.Engine.Storage == "postgres" {
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
		db, err = database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
		}
		defer db.Close()
		appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

		accessRepo = repository.NewPostgresAccessRepository(db.Pool())
		eventRepo = repository.NewPostgresEventRepository(db.Pool())
		bookingRepo = repository.NewPostgresBookingRepository(db.Pool())
	} else {
		memAccess := repository.NewMemoryAccessRepository()
		memEvents := repository.NewMemoryEventRepository()
		accessRepo = memAccess
		eventRepo = memEvents
		bookingRepo = repository.NewMemoryBookingRepository(memEvents)
		appLog.Info("Using in-memory storage")
	}

	// Initialize Redis for idempotency keys
	var redisClient *pkgredis.Client
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
	redisClient, err = pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Warn(fmt.Sprintf("Redis connection failed, idempotency disabled: %v", err))
		redisClient = nil
	} else {
		defer redisClient.Close()
		appLog.Info("Redis connected")
	}

	// Initialize token gateway
	var tokenGateway gateway.TokenGateway
	if cfg.Token.Gateway == "http" {
		gwCfg := gateway.DefaultHTTPTokenGatewayConfig()
		gwCfg.BaseURL = cfg.Token.BaseURL
		tokenGateway = gateway.NewHTTPTokenGateway(gwCfg)
	} else {
		tokenGateway = gateway.NewMemoryTokenGateway(nil)
	}
	appLog.Info(fmt.Sprintf("Token gateway: %s", tokenGateway.Name()))

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		eventPubCfg := &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		}
		publisher, err := service.NewKafkaEventPublisher(ctx, eventPubCfg)
		if err != nil {
			appLog.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			appLog.Info("Kafka event publisher connected")
			eventPublisher = publisher
		}
	}
	defer eventPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		AccessRepo:     accessRepo,
		EventRepo:      eventRepo,
		BookingRepo:    bookingRepo,
		TokenGateway:   tokenGateway,
		EventPublisher: eventPublisher,
		Generation:     generation,
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	callerIdentity := middleware.CallerIdentity(&middleware.CallerConfig{
		Secret:              cfg.JWT.Secret,
		AllowHeaderFallback: !cfg.IsProduction(),
	})

	v1 := router.Group("/api/v1")
	{
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":     "ok",
				"version":    cfg.App.Version,
				"service":    cfg.App.Name,
				"generation": int(generation),
			})
		})

		admin := v1.Group("/admin")
		admin.Use(callerIdentity)
		{
			admin.POST("/initialize", container.AdminHandler.Initialize)
			admin.POST("/roles", container.AdminHandler.GrantRole)
			admin.DELETE("/roles", container.AdminHandler.RevokeRole)
			admin.POST("/creators", container.AdminHandler.AddCreator)
			admin.GET("/creators/:id", container.AdminHandler.GetCreator)
			admin.DELETE("/creators/:id", container.AdminHandler.RemoveCreator)
			admin.POST("/users", container.AdminHandler.CreateUser)
		}

		events := v1.Group("/events")
		{
			events.GET("", container.EventHandler.ListEvents)
			events.GET("/:id", container.EventHandler.GetEvent)
			events.POST("", callerIdentity, container.EventHandler.CreateEvent)
			events.PATCH("/:id", callerIdentity, container.EventHandler.UpdateEvent)
			events.POST("/:id/decline", callerIdentity, container.EventHandler.DeclineEvent)
		}

		payments := v1.Group("/payments")
		payments.Use(callerIdentity)
		{
			pay := container.PaymentHandler.Pay
			if redisClient != nil {
				idemCfg := middleware.DefaultIdempotencyConfig(redisClient)
				payments.POST("", middleware.Idempotency(idemCfg), pay)
			} else {
				payments.POST("", pay)
			}
			payments.GET("/:id", container.PaymentHandler.GetSettlement)
		}

		v1.GET("/bookings/:eventID/:userID", container.PaymentHandler.GetBooking)
	}

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
		appLog.Info(fmt.Sprintf("Booking engine listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}
