package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
	// Name labels rejections in metrics
	Name string
}

// RateLimitStatus is the state of one caller's fixed window.
type RateLimitStatus struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// RateLimiter counts requests per caller in fixed windows stored in Redis
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
}

// NewRateLimiter creates a new rate limiter instance
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		redis:  redisClient,
		config: config,
	}
}

// Config returns the limiter settings.
func (rl *RateLimiter) Config() RateLimitConfig {
	return rl.config
}

// RateLimitMiddleware limits each authenticated user. Redis failures let the request through.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context, userID string) string {
		return userID
	}, "requests")
}

// PerRecipeRateLimitMiddleware limits each (user, recipe) pair.
func (rl *RateLimiter) PerRecipeRateLimitMiddleware() gin.HandlerFunc {
	return rl.middleware(func(c *gin.Context, userID string) string {
		return userID + ":" + c.Param("id")
	}, "modifications per recipe")
}

func (rl *RateLimiter) middleware(subject func(*gin.Context, string) string, unit string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication credentials were not provided"})
			return
		}

		status, allowed, err := rl.IsAllowed(c.Request.Context(), subject(c, userID.String()))
		if err != nil {
			logging.Ctx(c.Request.Context()).Warn().Err(err).Str("limiter", rl.config.Name).Msg("rate limit check failed")
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(status.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(status.ResetAt.Unix(), 10))

		if !allowed {
			metrics.RateLimitRejections.WithLabelValues(rl.config.Name).Inc()
			c.Header("Retry-After", strconv.Itoa(int(time.Until(status.ResetAt).Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: fmt.Sprintf("rate limit exceeded: %d %s per %v", rl.config.Limit, unit, rl.config.Window),
			})
			return
		}

		c.Next()
	}
}

// IsAllowed counts a request for subject and reports whether it fits in the window.
func (rl *RateLimiter) IsAllowed(ctx context.Context, subject string) (RateLimitStatus, bool, error) {
	key, resetAt := rl.window(subject)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return RateLimitStatus{}, false, err
	}

	count := int(incrCmd.Val())
	return rl.status(count, resetAt), count <= rl.config.Limit, nil
}

// Status reports the window for subject without counting a request.
func (rl *RateLimiter) Status(ctx context.Context, subject string) (RateLimitStatus, error) {
	key, resetAt := rl.window(subject)

	count, err := rl.redis.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return rl.status(0, resetAt), nil
	}
	if err != nil {
		return RateLimitStatus{}, err
	}
	return rl.status(count, resetAt), nil
}

func (rl *RateLimiter) window(subject string) (string, time.Time) {
	windowStart := time.Now().Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, subject, windowStart.Unix())
	return key, windowStart.Add(rl.config.Window)
}

func (rl *RateLimiter) status(count int, resetAt time.Time) RateLimitStatus {
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}
	return RateLimitStatus{Limit: rl.config.Limit, Remaining: remaining, ResetAt: resetAt}
}

// NewRecipeCreationRateLimiter allows 20 new recipes per user per hour.
func NewRecipeCreationRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     20,
		KeyPrefix: "rate_limit:recipe_creation",
		Name:      "recipe_creation",
	})
}

// NewRecipeModificationRateLimiter allows 10 updates per recipe per user per hour.
func NewRecipeModificationRateLimiter(redisClient *redis.Client) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Hour,
		Limit:     10,
		KeyPrefix: "rate_limit:recipe_modification",
		Name:      "recipe_modification",
	})
}
