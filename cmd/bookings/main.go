package main

import (
	"spacelink/internal/bookings/events"
	"spacelink/internal/bookings/handler"
	"spacelink/internal/bookings/repository"
	"spacelink/internal/bookings/service"
	"spacelink/internal/bookings/validator"
	"spacelink/internal/cache"
	propertiesrepo "spacelink/internal/properties/repository"
	usersrepo "spacelink/internal/users/repository"
	"spacelink/pkg/app"
	"spacelink/pkg/auth"
	"spacelink/pkg/config"
	"spacelink/pkg/kafka"
	kafka_config "spacelink/pkg/kafka/config"
	kafka_middleware "spacelink/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.RequireJWTSecret()
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	bookingService := initServices(cfg, publisher)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	serverApp.SetApp(handler.NewBookingHandler(bookingService, tokens, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher events.Publisher) service.BookingService {
	bookingRepo := repository.NewMongoBookingRepository(cfg)

	var locker repository.Locker
	if cfg.Client.Redis != nil {
		locker = cache.NewRedisCache(cfg.Client.Redis, cfg.PropertyCacheTTL)
	} else {
		locker = repository.NewBookingLockRepository(cfg)
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		locker,
		propertiesrepo.NewMongoPropertyRepository(cfg),
		usersrepo.NewMongoUserRepository(cfg),
		validator.NewBookingValidator(),
		publisher,
		cfg,
	)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}

// initPublisher returns a Kafka-backed publisher when brokers are configured.
// Lifecycle events are optional, so any setup failure falls back to a no-op.
func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka not configured, booking events disabled")
		return events.NoopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Error("Invalid Kafka configuration, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, events.DLQTopic(cfg.BookingEventsTopic), cfg.Log)
	if err != nil {
		cfg.Log.Error("Failed to create Kafka producer, booking events disabled", "error", err)
		return events.NoopPublisher{}
	}

	metrics := kafka_middleware.NewMetrics()
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(metrics.ProducerMiddleware())

	serverApp.OnShutdown(func() {
		metrics.LogSnapshot(cfg.Log)
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	return events.NewKafkaPublisher(producer, ServiceName)
}
