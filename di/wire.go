//go:build wireinject
// +build wireinject

package di

import (
	"fleet/config"
	"fleet/infras/jwt"
	"fleet/infras/kafka"
	"fleet/infras/notification"
	"fleet/infras/otel"
	"fleet/infras/postgres"
	"fleet/infras/redis"
	"fleet/infras/s3"
	"fleet/internal/events"
	"fleet/internal/reclaimer"
	"fleet/permissions"
	"fleet/shared/cache"
	"fleet/transport/http"
	"fleet/transport/http/middleware"
	"fleet/transport/http/router"

	bookingRepository "fleet/internal/domains/booking/repository"
	bookingService "fleet/internal/domains/booking/service"
	carRepository "fleet/internal/domains/car/repository"
	customerRepository "fleet/internal/domains/customer/repository"
	driverRepository "fleet/internal/domains/driver/repository"
	feeRepository "fleet/internal/domains/fee/repository"
	feeService "fleet/internal/domains/fee/service"
	inspectionRepository "fleet/internal/domains/inspection/repository"
	transactionRepository "fleet/internal/domains/transaction/repository"
	waitlistRepository "fleet/internal/domains/waitlist/repository"
	waitlistService "fleet/internal/domains/waitlist/service"

	adminHandler "fleet/internal/handlers/admin"
	bookingHandler "fleet/internal/handlers/booking"
	carHandler "fleet/internal/handlers/car"
	feeHandler "fleet/internal/handlers/fee"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	kafka.New,
	notification.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var repositories = wire.NewSet(
	bookingRepository.New,
	carRepository.New,
	customerRepository.New,
	driverRepository.New,
	feeRepository.New,
	inspectionRepository.NewRelease,
	inspectionRepository.NewReturn,
	transactionRepository.New,
	waitlistRepository.New,
)

var domains = wire.NewSet(
	repositories,
	feeService.New,
	waitlistService.New,
	waitlistService.NewNotifier,
	bookingService.NewOccupancy,
	bookingService.New,
)

var background = wire.NewSet(
	events.NewPublisher,
	events.NewConsumer,
	reclaimer.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	bookingHandler.New,
	carHandler.New,
	feeHandler.New,
	adminHandler.New,
	router.New,
)

func InitializeApp() *App {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		background,
		routing,
		http.New,
		wire.Struct(new(App), "*"),
	)

	return &App{}
}
