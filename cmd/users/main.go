package main

import (
	"spacelink/internal/users/handler"
	"spacelink/internal/users/repository"
	"spacelink/internal/users/service"
	"spacelink/internal/users/validator"
	"spacelink/pkg/app"
	"spacelink/pkg/auth"
	"spacelink/pkg/config"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	cfg.RequireJWTSecret()
	cfg.SetMongo()

	cfg.Log.Info("Starting Users service")
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	userService := service.NewUserService(
		repository.NewMongoUserRepository(cfg),
		validator.NewUserValidator(),
		tokens,
		cfg,
	)
	cfg.Log.Info("User service initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewUserHandler(userService, tokens, cfg.Log))
	serverApp.Run()
}
