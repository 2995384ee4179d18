package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

const shoppingListFilename = "shopping_list.txt"

type RecipeHandler struct {
	recipeService       service.IRecipeService
	shoppingListService service.IShoppingListService
	validator           middleware.TokenValidator
	pager               pager
	baseURL             string
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

// NewRecipeHandler creates the recipe handler. The limiters may be nil when Redis is unavailable.
func NewRecipeHandler(
	recipeService service.IRecipeService,
	shoppingListService service.IShoppingListService,
	validator middleware.TokenValidator,
	p pager,
	creationLimiter, modificationLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		shoppingListService: shoppingListService,
		validator:           validator,
		pager:               p,
		baseURL:             p.baseURL,
		creationLimiter:     creationLimiter,
		modificationLimiter: modificationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)
	optionalAuth := middleware.OptionalAuth(h.validator)

	create := []gin.HandlerFunc{requireAuth}
	if h.creationLimiter != nil {
		create = append(create, h.creationLimiter.RateLimitMiddleware())
	}
	update := []gin.HandlerFunc{requireAuth}
	if h.modificationLimiter != nil {
		update = append(update, h.modificationLimiter.PerRecipeRateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", optionalAuth, h.ListRecipes)
		recipes.POST("", append(create, h.CreateRecipe)...)
		recipes.GET("/download_shopping_cart", requireAuth, h.DownloadShoppingCart)
		recipes.GET("/:id", optionalAuth, h.GetRecipe)
		recipes.PATCH("/:id", append(update, h.UpdateRecipe)...)
		recipes.DELETE("/:id", requireAuth, h.DeleteRecipe)
		recipes.GET("/:id/get-link", h.GetLink)
		recipes.POST("/:id/favorite", requireAuth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", requireAuth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", requireAuth, h.AddToShoppingCart)
		recipes.DELETE("/:id/shopping_cart", requireAuth, h.RemoveFromShoppingCart)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	req, err := h.pager.parse(c)
	if err != nil {
		respondError(c, err)
		return
	}

	filter := types.RecipeFilter{
		ViewerID: viewer(c),
		Offset:   req.Offset(),
		Limit:    req.Limit,
	}
	if raw := c.Query("author"); raw != "" {
		authorID, err := uuid.Parse(raw)
		if err != nil {
			respondError(c, &service.ValidationError{Fields: map[string]string{"author": "must be a valid id"}})
			return
		}
		filter.AuthorID = &authorID
	}
	if filter.IsFavorited, err = queryFlag(c, "is_favorited"); err != nil {
		respondError(c, err)
		return
	}
	if filter.IsInShoppingCart, err = queryFlag(c, "is_in_shopping_cart"); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	recipes, total, err := h.recipeService.ListRecipes(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	state, err := h.recipeService.ViewerState(ctx, filter.ViewerID, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.RecipeResponse, len(recipes))
	for i := range recipes {
		results[i] = types.NewRecipeResponse(&recipes[i], state)
	}
	c.JSON(http.StatusOK, newPage(h.pager, c, req, total, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req types.CreateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusCreated, recipe)
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}

	var req types.UpdateRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondRecipe(c, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink returns the frontend URL of the recipe.
func (h *RecipeHandler) GetLink(c *gin.Context) {
	id, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return
	}
	if err := h.recipeService.RecipeExists(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.ShortLinkResponse{ShortLink: h.baseURL + "/recipes/" + id.String() + "/"})
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.toggle(c, h.recipeService.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.untoggle(c, h.recipeService.RemoveFavorite)
}

func (h *RecipeHandler) AddToShoppingCart(c *gin.Context) {
	h.toggle(c, h.recipeService.AddToShoppingCart)
}

func (h *RecipeHandler) RemoveFromShoppingCart(c *gin.Context) {
	h.untoggle(c, h.recipeService.RemoveFromShoppingCart)
}

// DownloadShoppingCart serves the caller's aggregated shopping list as a text attachment.
func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	lines, err := h.shoppingListService.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.ShoppingListDownloads.Inc()
	c.Header("Content-Disposition", `attachment; filename="`+shoppingListFilename+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.RenderShoppingList(lines)))
}

// toggle adds the recipe to one of the caller's lists and responds with the short form.
func (h *RecipeHandler) toggle(c *gin.Context, add func(context.Context, types.ToggleRecipeRequest) (*models.Recipe, error)) {
	req, ok := toggleRequest(c)
	if !ok {
		return
	}
	recipe, err := add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeShortResponse(recipe))
}

func (h *RecipeHandler) untoggle(c *gin.Context, remove func(context.Context, types.ToggleRecipeRequest) error) {
	req, ok := toggleRequest(c)
	if !ok {
		return
	}
	if err := remove(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func toggleRequest(c *gin.Context) (types.ToggleRecipeRequest, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return types.ToggleRecipeRequest{}, false
	}
	recipeID, ok := pathID(c, service.ErrRecipeNotFound)
	if !ok {
		return types.ToggleRecipeRequest{}, false
	}
	return types.ToggleRecipeRequest{UserID: userID, RecipeID: recipeID}, true
}

func (h *RecipeHandler) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	state, err := h.recipeService.ViewerState(c.Request.Context(), viewer(c), []models.Recipe{*recipe})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, types.NewRecipeResponse(recipe, state))
}

// queryFlag reads a 0/1 (or true/false) query parameter.
func queryFlag(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &service.ValidationError{Fields: map[string]string{name: "must be 0 or 1"}}
	}
	return v, nil
}
