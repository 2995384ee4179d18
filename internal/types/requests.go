package types

import (
	"github.com/google/uuid"
)

// RegisterRequest represents the request body for creating a user
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150,username"`
	FirstName string `json:"first_name" binding:"required,max=150,person_name"`
	LastName  string `json:"last_name" binding:"required,max=150,person_name"`
	Password  string `json:"password" binding:"required,min=8,max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SetPasswordRequest struct {
	NewPassword     string `json:"new_password" binding:"required,min=8,max=150"`
	CurrentPassword string `json:"current_password" binding:"required"`
}

// IngredientAmount references a catalog ingredient inside a recipe payload.
type IngredientAmount struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount" binding:"required,min=1"`
}

// CreateRecipeRequest represents the request body for creating a recipe
type CreateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,min=1,dive"`
	Image       string             `json:"image" binding:"required"`
	Name        string             `json:"name" binding:"required,max=256"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1"`
}

// UpdateRecipeRequest replaces every field of a recipe; image may be omitted to keep the current one.
type UpdateRecipeRequest struct {
	Ingredients []IngredientAmount `json:"ingredients" binding:"required,min=1,dive"`
	Image       string             `json:"image"`
	Name        string             `json:"name" binding:"required,max=256"`
	Text        string             `json:"text" binding:"required"`
	CookingTime int                `json:"cooking_time" binding:"required,min=1"`
}

type CreateIngredientRequest struct {
	Name            string `json:"name" binding:"required,max=128,ingredient_name"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=64"`
}

// ToggleRecipeRequest identifies a favorite or shopping-cart row.
type ToggleRecipeRequest struct {
	UserID   uuid.UUID
	RecipeID uuid.UUID
}

// SubscriptionRequest identifies a follower -> author edge.
type SubscriptionRequest struct {
	FollowerID uuid.UUID
	AuthorID   uuid.UUID
}

// RecipeFilter carries the list query. ViewerID is nil for anonymous callers.
type RecipeFilter struct {
	ViewerID         *uuid.UUID
	AuthorID         *uuid.UUID
	IsFavorited      bool
	IsInShoppingCart bool
	Offset           int
	Limit            int
}
