package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// defaultRecipesLimit is how many recipes each feed entry shows without ?recipes_limit.
const defaultRecipesLimit = 3

// SubscriptionHandler serves follow/unfollow and the subscription feed.
type SubscriptionHandler struct {
	subscriptionService service.ISubscriptionService
	validator           middleware.TokenValidator
	pager               pager
}

func NewSubscriptionHandler(subscriptionService service.ISubscriptionService, validator middleware.TokenValidator, p pager) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		validator:           validator,
		pager:               p,
	}
}

func (h *SubscriptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(middleware.AuthMiddleware(h.validator))
	{
		users.GET("/subscriptions", h.ListSubscriptions)
		users.POST("/:id/subscribe", h.Subscribe)
		users.DELETE("/:id/subscribe", h.Unsubscribe)
	}
}

func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	followerID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.subscriptionService.Subscribe(ctx, types.SubscriptionRequest{FollowerID: followerID, AuthorID: authorID}); err != nil {
		respondError(c, err)
		return
	}

	entry, err := h.subscriptionService.FeedEntry(ctx, authorID, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewAuthorWithRecipesResponse(&entry.Author, entry.Recipes, entry.RecipesCount))
}

func (h *SubscriptionHandler) Unsubscribe(c *gin.Context) {
	followerID, ok := requireUser(c)
	if !ok {
		return
	}
	authorID, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}

	if err := h.subscriptionService.Unsubscribe(c.Request.Context(), types.SubscriptionRequest{FollowerID: followerID, AuthorID: authorID}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SubscriptionHandler) ListSubscriptions(c *gin.Context) {
	followerID, ok := requireUser(c)
	if !ok {
		return
	}
	req, err := h.pager.parse(c)
	if err != nil {
		respondError(c, err)
		return
	}
	recipesLimit, err := parseRecipesLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, total, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), followerID, req.Offset(), req.Limit, recipesLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.AuthorWithRecipesResponse, len(entries))
	for i := range entries {
		results[i] = types.NewAuthorWithRecipesResponse(&entries[i].Author, entries[i].Recipes, entries[i].RecipesCount)
	}
	c.JSON(http.StatusOK, newPage(h.pager, c, req, total, results))
}

func parseRecipesLimit(c *gin.Context) (int, error) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return defaultRecipesLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &service.ValidationError{Fields: map[string]string{"recipes_limit": "must be a non-negative integer"}}
	}
	return n, nil
}
