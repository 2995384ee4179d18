package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// UserHandler serves the user list and profiles.
type UserHandler struct {
	userService service.IUserService
	validator   middleware.TokenValidator
	pager       pager
}

func NewUserHandler(userService service.IUserService, validator middleware.TokenValidator, p pager) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator,
		pager:       p,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", middleware.OptionalAuth(h.validator), h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.validator), h.Me)
		users.GET("/:id", middleware.AuthMiddleware(h.validator), h.GetUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	req, err := h.pager.parse(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	users, total, err := h.userService.ListUsers(ctx, req.Offset(), req.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := h.userService.SubscribedTo(ctx, viewer(c), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.UserResponse, len(users))
	for i := range users {
		results[i] = types.NewUserResponse(&users[i], subscribed[users[i].ID])
	}
	c.JSON(http.StatusOK, newPage(h.pager, c, req, total, results))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user, false))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := pathID(c, service.ErrUserNotFound)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	subscribed, err := h.userService.SubscribedTo(ctx, viewer(c), []uuid.UUID{user.ID})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user, subscribed[user.ID]))
}
