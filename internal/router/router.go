package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// SetupRouter builds the engine with the middleware chain, the API routes,
// /metrics and, when images are stored on disk, the media directory.
func SetupRouter(db *gorm.DB, services api.Services, redisClient *redis.Client, cfg *config.Config) (*gin.Engine, error) {
	if err := validation.Setup(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)
	router.NoRoute(middleware.NotFound())
	router.NoMethod(middleware.MethodNotAllowed())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.S3BucketName == "" && cfg.MediaURL != "" {
		router.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	api.RegisterRoutes(router, db, services, redisClient, cfg)
	return router, nil
}
