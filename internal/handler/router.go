package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/laucv/gcuest-api/internal/middleware"
	"github.com/laucv/gcuest-api/internal/service"
	appErrors "github.com/laucv/gcuest-api/pkg/errors"
	"github.com/laucv/gcuest-api/pkg/logger"
	corsmiddleware "github.com/laucv/gcuest-api/pkg/middleware/cors"
	reqidmiddleware "github.com/laucv/gcuest-api/pkg/middleware/requestid"
	"github.com/laucv/gcuest-api/pkg/response"
)

// RouterConfig carries the route prefixes the API is mounted under.
type RouterConfig struct {
	RutaAPI   string
	RutaLogin string
}

// Services groups the service layer dependencies of the router.
type Services struct {
	Auth      *service.AuthService
	Users     *service.UserService
	Questions *service.QuestionService
	Metrics   *service.MetricsService
}

// NewRouter assembles the gin engine: global middleware, the login and
// passthrough routes, the JWT-protected resource routes, and the
// health and metrics endpoints.
func NewRouter(cfg RouterConfig, logr *zap.Logger, svcs Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New())
	r.Use(middleware.Metrics(svcs.Metrics))

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if svcs.Metrics != nil {
		r.GET("/metrics", gin.WrapH(svcs.Metrics.Handler()))
	}

	loginHandler := NewLoginHandler(svcs.Auth)
	userHandler := NewUserHandler(svcs.Users)
	questionHandler := NewQuestionHandler(svcs.Questions)

	r.POST(cfg.RutaLogin, loginHandler.Login)

	api := r.Group(cfg.RutaAPI)

	// Passthrough routes: reachable without a token.
	api.GET("/users/username/:username", userHandler.GetByUsername)
	api.OPTIONS("/users", userHandler.OptionsCollection)
	api.OPTIONS("/users/:id", userHandler.OptionsItem)
	api.OPTIONS("/questions", questionHandler.OptionsCollection)
	api.OPTIONS("/questions/:id", questionHandler.OptionsItem)

	protected := api.Group("")
	protected.Use(middleware.JWT(svcs.Auth))
	{
		protected.GET("/users", userHandler.List)
		protected.POST("/users", userHandler.Create)
		protected.GET("/users/:id", userHandler.Get)
		protected.PUT("/users/:id", userHandler.Update)
		protected.DELETE("/users/:id", userHandler.Delete)

		protected.GET("/questions", questionHandler.List)
		protected.POST("/questions", questionHandler.Create)
		protected.GET("/questions/:id", questionHandler.Get)
		protected.PUT("/questions/:id", questionHandler.Update)
		protected.DELETE("/questions/:id", questionHandler.Delete)
	}

	return r
}
