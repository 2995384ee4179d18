package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, userID uuid.UUID, current, next string) error
}

// IUserService defines the interface for user lookups
type IUserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error)
	SubscribedTo(ctx context.Context, followerID *uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]bool, error)
}

// ISubscriptionService defines the interface for follow operations
type ISubscriptionService interface {
	Subscribe(ctx context.Context, req types.SubscriptionRequest) (*models.User, error)
	Unsubscribe(ctx context.Context, req types.SubscriptionRequest) error
	ListSubscriptions(ctx context.Context, followerID uuid.UUID, offset, limit, recipesLimit int) ([]AuthorWithRecipes, int64, error)
	FeedEntry(ctx context.Context, authorID uuid.UUID, recipesLimit int) (*AuthorWithRecipes, error)
}

// IIngredientService defines the interface for the ingredient catalog
type IIngredientService interface {
	Search(ctx context.Context, prefix string) ([]models.Ingredient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	Create(ctx context.Context, req *types.CreateIngredientRequest) (*models.Ingredient, error)
	BulkLoad(ctx context.Context, items []types.CreateIngredientRequest) (int, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error)
	GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, actorID, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, actorID, id uuid.UUID) error
	ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]models.Recipe, int64, error)
	ViewerState(ctx context.Context, viewerID *uuid.UUID, recipes []models.Recipe) (types.ViewerState, error)
	RecipeExists(ctx context.Context, id uuid.UUID) error
	AddFavorite(ctx context.Context, req types.ToggleRecipeRequest) (*models.Recipe, error)
	RemoveFavorite(ctx context.Context, req types.ToggleRecipeRequest) error
	AddToShoppingCart(ctx context.Context, req types.ToggleRecipeRequest) (*models.Recipe, error)
	RemoveFromShoppingCart(ctx context.Context, req types.ToggleRecipeRequest) error
}

// IShoppingListService defines the interface for the aggregated shopping list
type IShoppingListService interface {
	Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListLine, error)
}

// ImageStore persists decoded images and returns the URL they are served from.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
