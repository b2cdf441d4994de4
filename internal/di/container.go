package di

import (
	"github.com/Aswindil12/algus-turf/internal/gateway"
	"github.com/Aswindil12/algus-turf/internal/handler"
	"github.com/Aswindil12/algus-turf/internal/repository"
	"github.com/Aswindil12/algus-turf/internal/service"
	"github.com/Aswindil12/algus-turf/pkg/database"
	"github.com/Aswindil12/algus-turf/pkg/redis"
)

// Container holds all dependencies for the turf booking service
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	BookingRepo  repository.BookingRepository
	UserRepo     repository.UserRepository
	SlotHoldRepo repository.SlotHoldRepository

	// Gateways and publishers
	PaymentGateway gateway.PaymentGateway
	EventPublisher service.EventPublisher

	// Services
	BookingService      service.BookingService
	AvailabilityService service.AvailabilityService
	AuthService         service.AuthService
	AdminService        service.AdminService

	// Handlers
	HealthHandler  *handler.HealthHandler
	BookingHandler *handler.BookingHandler
	AuthHandler    *handler.AuthHandler
	AdminHandler   *handler.AdminHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	BookingRepo    repository.BookingRepository
	UserRepo       repository.UserRepository
	SlotHoldRepo   repository.SlotHoldRepository
	PaymentGateway gateway.PaymentGateway
	EventPublisher service.EventPublisher
	SharedField    bool
	BookingConfig  *service.BookingServiceConfig
	AuthConfig     *service.AuthServiceConfig
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:             cfg.DB,
		Redis:          cfg.Redis,
		BookingRepo:    cfg.BookingRepo,
		UserRepo:       cfg.UserRepo,
		SlotHoldRepo:   cfg.SlotHoldRepo,
		PaymentGateway: cfg.PaymentGateway,
		EventPublisher: cfg.EventPublisher,
	}

	// Initialize services
	c.BookingService = service.NewBookingService(
		c.BookingRepo,
		c.SlotHoldRepo,
		c.PaymentGateway,
		c.EventPublisher,
		cfg.BookingConfig,
	)
	c.AvailabilityService = service.NewAvailabilityService(
		c.BookingRepo,
		c.SlotHoldRepo,
		cfg.SharedField,
	)
	c.AuthService = service.NewAuthService(c.UserRepo, cfg.AuthConfig)
	c.AdminService = service.NewAdminService(c.BookingRepo, c.UserRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.BookingHandler = handler.NewBookingHandler(c.BookingService, c.AvailabilityService)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.AdminHandler = handler.NewAdminHandler(c.AdminService, c.BookingService)

	return c
}
