package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// Services bundles everything the handlers depend on.
type Services struct {
	Auth          service.IAuthService
	Users         service.IUserService
	Subscriptions service.ISubscriptionService
	Ingredients   service.IIngredientService
	Recipes       service.IRecipeService
	ShoppingList  service.IShoppingListService
}

// NewServices wires the gorm-backed implementations.
func NewServices(db *gorm.DB, cfg *config.Config, images service.ImageStore) Services {
	return Services{
		Auth:          service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL),
		Users:         service.NewUserService(db),
		Subscriptions: service.NewSubscriptionService(db),
		Ingredients:   service.NewIngredientService(db),
		Recipes:       service.NewRecipeService(db, service.NewImageService(images)),
		ShoppingList:  service.NewShoppingListService(db),
	}
}

// HealthCheck reports whether the API and its database are reachable.
func HealthCheck(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := database.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"message": "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Foodgram API is running",
			"version": "v1.0.0",
		})
	}
}

// RegisterRoutes registers all API routes. redisClient may be nil, in which case
// recipe writes are not rate limited.
func RegisterRoutes(router *gin.Engine, db *gorm.DB, services Services, redisClient *redis.Client, cfg *config.Config) {
	router.GET("/health", HealthCheck(db))
	router.GET("/api/health", HealthCheck(db))

	var creationLimiter, modificationLimiter *middleware.RateLimiter
	if redisClient != nil {
		creationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
		modificationLimiter = middleware.NewRecipeModificationRateLimiter(redisClient)
	}

	p := newPager(cfg.BaseURL, cfg.PageSize)
	validator := services.Auth

	api := router.Group("/api")
	NewAuthHandler(services.Auth).RegisterRoutes(api)
	NewUserHandler(services.Users, validator, p).RegisterRoutes(api)
	NewSubscriptionHandler(services.Subscriptions, validator, p).RegisterRoutes(api)
	NewIngredientHandler(services.Ingredients, validator, db).RegisterRoutes(api)
	NewRecipeHandler(services.Recipes, services.ShoppingList, validator, p, creationLimiter, modificationLimiter).RegisterRoutes(api)

	if creationLimiter != nil {
		RegisterRateLimitRoutes(api, validator, creationLimiter, modificationLimiter)
	}
}

// RegisterRateLimitRoutes registers endpoints for checking rate limit status
func RegisterRateLimitRoutes(router *gin.RouterGroup, validator middleware.TokenValidator, creationLimiter, modificationLimiter *middleware.RateLimiter) {
	rateLimits := router.Group("/rate-limits")
	rateLimits.Use(middleware.AuthMiddleware(validator))
	{
		rateLimits.GET("/recipe-creation", func(c *gin.Context) {
			userID, ok := requireUser(c)
			if !ok {
				return
			}
			rateLimitStatus(c, creationLimiter, userID.String())
		})

		rateLimits.GET("/recipe-modification/:id", func(c *gin.Context) {
			userID, ok := requireUser(c)
			if !ok {
				return
			}
			recipeID, ok := pathID(c, service.ErrRecipeNotFound)
			if !ok {
				return
			}
			rateLimitStatus(c, modificationLimiter, userID.String()+":"+recipeID.String())
		})
	}
}

func rateLimitStatus(c *gin.Context, limiter *middleware.RateLimiter, subject string) {
	status, err := limiter.Status(c.Request.Context(), subject)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"limit":      status.Limit,
		"remaining":  status.Remaining,
		"reset_time": status.ResetAt.Unix(),
		"window":     limiter.Config().Window.String(),
	})
}
