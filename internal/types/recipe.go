package types

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
)

type IngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
}

type RecipeIngredientResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                  `json:"id"`
	Author           UserResponse               `json:"author"`
	Ingredients      []RecipeIngredientResponse `json:"ingredients"`
	IsFavorited      bool                       `json:"is_favorited"`
	IsInShoppingCart bool                       `json:"is_in_shopping_cart"`
	Name             string                     `json:"name"`
	Image            string                     `json:"image"`
	Text             string                     `json:"text"`
	CookingTime      int                        `json:"cooking_time"`
	CreatedAt        time.Time                  `json:"created_at"`
}

// RecipeShortResponse is the compact form used by favorites, the cart and the subscription feed.
type RecipeShortResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

// ViewerState holds the caller-relative flags for a batch of recipes.
// The zero value describes an anonymous caller.
type ViewerState struct {
	Favorited  map[uuid.UUID]bool
	InCart     map[uuid.UUID]bool
	Subscribed map[uuid.UUID]bool
}

func NewIngredientResponse(i *models.Ingredient) IngredientResponse {
	return IngredientResponse{
		ID:              i.ID,
		Name:            i.Name,
		MeasurementUnit: i.MeasurementUnit,
	}
}

func NewRecipeResponse(r *models.Recipe, v ViewerState) RecipeResponse {
	ingredients := make([]RecipeIngredientResponse, len(r.Ingredients))
	for i, ri := range r.Ingredients {
		ingredients[i] = RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		}
	}
	sort.SliceStable(ingredients, func(i, j int) bool {
		return ingredients[i].Name < ingredients[j].Name
	})

	return RecipeResponse{
		ID:               r.ID,
		Author:           NewUserResponse(&r.Author, v.Subscribed[r.AuthorID]),
		Ingredients:      ingredients,
		IsFavorited:      v.Favorited[r.ID],
		IsInShoppingCart: v.InCart[r.ID],
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
}

func NewRecipeShortResponse(r *models.Recipe) RecipeShortResponse {
	return RecipeShortResponse{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.Image,
		CookingTime: r.CookingTime,
	}
}
