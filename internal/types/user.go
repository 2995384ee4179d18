package types

import (
	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
)

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
	Avatar       *string   `json:"avatar"`
}

// AuthorWithRecipesResponse is a followed author as shown in the subscription feed.
type AuthorWithRecipesResponse struct {
	UserResponse
	Recipes      []RecipeShortResponse `json:"recipes"`
	RecipesCount int64                 `json:"recipes_count"`
}

func NewUserResponse(u *models.User, isSubscribed bool) UserResponse {
	resp := UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: isSubscribed,
	}
	if u.Avatar != "" {
		avatar := u.Avatar
		resp.Avatar = &avatar
	}
	return resp
}

// NewAuthorWithRecipesResponse builds the feed entry. The caller follows the author by definition.
func NewAuthorWithRecipesResponse(u *models.User, recipes []models.Recipe, count int64) AuthorWithRecipesResponse {
	short := make([]RecipeShortResponse, len(recipes))
	for i := range recipes {
		short[i] = NewRecipeShortResponse(&recipes[i])
	}
	return AuthorWithRecipesResponse{
		UserResponse: NewUserResponse(u, true),
		Recipes:      short,
		RecipesCount: count,
	}
}
