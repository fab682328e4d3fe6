// Package server configures the HTTP server and routes.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/pet-composer/internal/config"
	"github.com/fleveque/pet-composer/internal/handler"
	"github.com/fleveque/pet-composer/internal/middleware"
	"github.com/fleveque/pet-composer/internal/service"
	"github.com/fleveque/pet-composer/internal/storage"
)

// Deps holds what the handlers need. Dependencies are passed explicitly:
// no DI container, no globals.
type Deps struct {
	Images       *service.ImageProcessor
	Composer     *service.Composer
	Battles      *service.BattleService // nil when no caption provider is configured
	CaptionCalls storage.CaptionCallRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler(deps.Battles != nil)
	composeHandler := handler.NewComposeHandler(
		deps.Images,
		deps.Composer,
		deps.Battles,
		cfg.Battle.Voices,
		cfg.Battle.MaxVoices,
		int64(cfg.Server.MaxUploadMB)<<20,
		logger,
	)
	adminHandler := handler.NewAdminHandler(deps.CaptionCalls, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	// Gin runs group middleware only for matched routes, so preflight needs
	// its own route. CORS answers it before this handler is reached.
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	compose := api.Group("/compose")
	compose.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	{
		compose.POST("/meme", composeHandler.Meme)
		compose.POST("/convo", composeHandler.Convo)
		compose.POST("/battle", composeHandler.Battle)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
	}
}
