package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/laucv/gcuest-api/internal/bootstrap"
	"github.com/laucv/gcuest-api/internal/handler"
	"github.com/laucv/gcuest-api/internal/repository"
	"github.com/laucv/gcuest-api/internal/service"
	"github.com/laucv/gcuest-api/pkg/config"
	"github.com/laucv/gcuest-api/pkg/database"
	"github.com/laucv/gcuest-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := bootstrap.SeedAdmin(ctx, userRepo, cfg.Admin, logr); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to seed admin user", "error", err)
	}
	cancel()

	authSvc := service.NewAuthService(userRepo, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	userSvc := service.NewUserService(userRepo, validator.New(), logr)
	questionSvc := service.NewQuestionService(questionRepo, userRepo, categoryRepo, logr)
	metricsSvc := service.NewMetricsService()

	r := handler.NewRouter(handler.RouterConfig{
		RutaAPI:   cfg.RutaAPI,
		RutaLogin: cfg.RutaLogin,
	}, logr, handler.Services{
		Auth:      authSvc,
		Users:     userSvc,
		Questions: questionSvc,
		Metrics:   metricsSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
