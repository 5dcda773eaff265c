//go:build wireinject
// +build wireinject

package di

import (
	"consultation/config"
	"consultation/infras/directory"
	"consultation/infras/jwt"
	"consultation/infras/metrics"
	"consultation/infras/otel"
	"consultation/infras/s3"
	"consultation/infras/zoom"
	"consultation/internal/consumers/payment"
	"consultation/permissions"
	"consultation/shared/cache"
	"consultation/transport/http"
	"consultation/transport/http/middleware"
	"consultation/transport/http/router"

	appointmentRepository "consultation/internal/domains/appointment/repository"
	appointmentService "consultation/internal/domains/appointment/service"
	"consultation/internal/domains/appointment/orchestrator"
	"consultation/internal/domains/appointment/slotguard"
	"consultation/internal/domains/appointment/validation"
	categoryRepository "consultation/internal/domains/category/repository"
	categoryService "consultation/internal/domains/category/service"
	consultationRepository "consultation/internal/domains/consultation/repository"
	consultationService "consultation/internal/domains/consultation/service"
	outboxRepository "consultation/internal/domains/outbox/repository"
	outboxService "consultation/internal/domains/outbox/service"
	zoomRepository "consultation/internal/domains/zoom/repository"
	zoomService "consultation/internal/domains/zoom/service"

	appointmentHandler "consultation/internal/handlers/appointment"
	categoryHandler "consultation/internal/handlers/category"
	consultationHandler "consultation/internal/handlers/consultation"
	outboxHandler "consultation/internal/handlers/outbox"
	zoomHandler "consultation/internal/handlers/zoom"

	"github.com/google/wire"
)

var infrastructures = wire.NewSet(
	providePostgres,
	otel.New,
	provideRegistry,
	metrics.New,
)

var httpInfrastructures = wire.NewSet(
	provideRedis,
	jwt.New,
	s3.New,
	permissions.Get,
)

var workerInfrastructures = wire.NewSet(
	provideDirectoryClient,
	directory.NewHTTPFallback,
	directory.NewResolver,
	zoom.New,
	providePublisher,
	provideConsumer,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	provideSecretBox,
)

var categoryDomain = wire.NewSet(
	categoryRepository.New,
	categoryService.New,
)

var consultationRepositories = wire.NewSet(
	consultationRepository.New,
	consultationRepository.NewOffering,
)

var consultationDomain = wire.NewSet(
	consultationRepositories,
	consultationService.New,
)

var zoomDomain = wire.NewSet(
	zoomRepository.New,
	zoomService.New,
)

var outboxDomain = wire.NewSet(
	outboxRepository.New,
	outboxService.New,
)

var appointmentDomain = wire.NewSet(
	appointmentRepository.New,
	wire.Bind(new(slotguard.Finder), new(appointmentRepository.Appointment)),
	slotguard.New,
	wire.Bind(new(validation.OfferingFinder), new(consultationRepository.Offering)),
	provideValidator,
	appointmentService.New,
)

var orchestration = wire.NewSet(
	wire.Bind(new(orchestrator.Credentials), new(zoomService.Credential)),
	orchestrator.New,
	provideRelay,
	wire.Bind(new(payment.Confirmer), new(appointmentService.Appointment)),
	payment.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	categoryHandler.New,
	consultationHandler.New,
	appointmentHandler.New,
	zoomHandler.New,
	outboxHandler.New,
	router.New,
)

func InitializeService(cfg *config.Config) (*http.HTTP, func(), error) {
	wire.Build(
		infrastructures,
		httpInfrastructures,
		middlewares,
		sharedHelpers,
		categoryDomain,
		consultationDomain,
		zoomDomain,
		outboxDomain,
		appointmentDomain,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil, nil
}

func InitializeWorker(cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		infrastructures,
		workerInfrastructures,
		provideSecretBox,
		consultationRepositories,
		zoomDomain,
		outboxRepository.New,
		appointmentDomain,
		orchestration,
		wire.Struct(new(Worker), "*"),
	)

	return &Worker{}, nil, nil
}
