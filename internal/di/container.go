package di

import (
	"github.com/Svg70/crypto-booking/internal/domain"
	"github.com/Svg70/crypto-booking/internal/gateway"
	"github.com/Svg70/crypto-booking/internal/handler"
	"github.com/Svg70/crypto-booking/internal/repository"
	"github.com/Svg70/crypto-booking/internal/service"
	"github.com/Svg70/crypto-booking/pkg/database"
	"github.com/Svg70/crypto-booking/pkg/redis"
)

// Container holds all dependencies for the booking engine
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	AccessRepo  repository.AccessRepository
	EventRepo   repository.EventRepository
	BookingRepo repository.BookingRepository

	// Gateways
	TokenGateway gateway.TokenGateway

	// Publishers
	EventPublisher service.EventPublisher

	// Services
	AccessService  service.AccessService
	EventService   service.EventService
	PaymentService service.PaymentService
	BookingService service.BookingService

	// Handlers
	HealthHandler  *handler.HealthHandler
	AdminHandler   *handler.AdminHandler
	EventHandler   *handler.EventHandler
	PaymentHandler *handler.PaymentHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	AccessRepo     repository.AccessRepository
	EventRepo      repository.EventRepository
	BookingRepo    repository.BookingRepository
	TokenGateway   gateway.TokenGateway
	EventPublisher service.EventPublisher
	Generation     domain.Generation
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		AccessRepo:     cfg.AccessRepo,
		EventRepo:      cfg.EventRepo,
		BookingRepo:    cfg.BookingRepo,
		TokenGateway:   cfg.TokenGateway,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.AccessService = service.NewAccessService(c.AccessRepo, &service.AccessServiceConfig{
		Generation: cfg.Generation,
	})
	c.EventService = service.NewEventService(c.EventRepo, c.AccessRepo, &service.EventServiceConfig{
		Generation: cfg.Generation,
		Publisher:  c.EventPublisher,
	})
	c.PaymentService = service.NewPaymentService(c.BookingRepo, c.EventRepo, c.AccessRepo, c.TokenGateway, &service.PaymentServiceConfig{
		Generation: cfg.Generation,
		Publisher:  c.EventPublisher,
	})
	c.BookingService = service.NewBookingService(c.BookingRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AdminHandler = handler.NewAdminHandler(c.AccessService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.PaymentHandler = handler.NewPaymentHandler(c.PaymentService, c.BookingService)

	return c
}
