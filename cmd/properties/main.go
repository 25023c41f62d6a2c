package main

import (
	"spacelink/internal/cache"
	"spacelink/internal/properties/handler"
	"spacelink/internal/properties/repository"
	"spacelink/internal/properties/service"
	"spacelink/internal/properties/validator"
	"spacelink/pkg/app"
	"spacelink/pkg/auth"
	"spacelink/pkg/config"
)

const ServiceName = "properties"

func main() {
	cfg := config.Load(ServiceName)
	cfg.RequireJWTSecret()
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Properties service")
	propertyService := initServices(cfg)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewPropertyHandler(propertyService, tokens, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.PropertyService {
	var propertyCache service.PropertyCache
	if cfg.Client.Redis != nil {
		propertyCache = cache.NewRedisCache(cfg.Client.Redis, cfg.PropertyCacheTTL)
	}

	propertyService := service.NewPropertyService(
		repository.NewMongoPropertyRepository(cfg),
		validator.NewPropertyValidator(),
		propertyCache,
		cfg,
	)

	cfg.Log.Info("Property service initialized", "database", cfg.MongoDatabaseName, "cache", propertyCache != nil)
	return propertyService
}
