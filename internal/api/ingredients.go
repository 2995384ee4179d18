package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IngredientHandler serves the read-only catalog plus admin-only creation.
type IngredientHandler struct {
	ingredientService service.IIngredientService
	validator         middleware.TokenValidator
	db                *gorm.DB
}

func NewIngredientHandler(ingredientService service.IIngredientService, validator middleware.TokenValidator, db *gorm.DB) *IngredientHandler {
	return &IngredientHandler{
		ingredientService: ingredientService,
		validator:         validator,
		db:                db,
	}
}

func (h *IngredientHandler) RegisterRoutes(router *gin.RouterGroup) {
	ingredients := router.Group("/ingredients")
	{
		ingredients.GET("", h.ListIngredients)
		ingredients.GET("/:id", h.GetIngredient)
		ingredients.POST("", middleware.AuthMiddleware(h.validator), middleware.RequireAdmin(h.db), h.CreateIngredient)
	}
}

// ListIngredients returns the whole matching list, unpaginated. ?name filters by
// case-insensitive prefix.
func (h *IngredientHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.ingredientService.Search(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]types.IngredientResponse, len(ingredients))
	for i := range ingredients {
		results[i] = types.NewIngredientResponse(&ingredients[i])
	}
	c.JSON(http.StatusOK, results)
}

func (h *IngredientHandler) GetIngredient(c *gin.Context) {
	id, ok := pathID(c, service.ErrIngredientNotFound)
	if !ok {
		return
	}

	ingredient, err := h.ingredientService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewIngredientResponse(ingredient))
}

func (h *IngredientHandler) CreateIngredient(c *gin.Context) {
	var req types.CreateIngredientRequest
	if !bindJSON(c, &req) {
		return
	}

	ingredient, err := h.ingredientService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewIngredientResponse(ingredient))
}
