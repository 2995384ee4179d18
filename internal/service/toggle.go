package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// recipeRelation describes a (user, recipe) membership table such as favorites.
type recipeRelation struct {
	model      interface{}
	newRow     func(types.ToggleRecipeRequest) interface{}
	errExists  error
	errMissing error
}

var (
	favoriteRelation = recipeRelation{
		model: &models.Favorite{},
		newRow: func(req types.ToggleRecipeRequest) interface{} {
			return &models.Favorite{UserID: req.UserID, RecipeID: req.RecipeID}
		},
		errExists:  ErrAlreadyFavorited,
		errMissing: ErrNotFavorited,
	}
	shoppingCartRelation = recipeRelation{
		model: &models.ShoppingCartItem{},
		newRow: func(req types.ToggleRecipeRequest) interface{} {
			return &models.ShoppingCartItem{UserID: req.UserID, RecipeID: req.RecipeID}
		},
		errExists:  ErrAlreadyInShoppingCart,
		errMissing: ErrNotInShoppingCart,
	}
)

// AddFavorite marks the recipe as a favorite of the user and returns the recipe.
func (s *RecipeService) AddFavorite(ctx context.Context, req types.ToggleRecipeRequest) (*models.Recipe, error) {
	return s.addRelation(ctx, favoriteRelation, req)
}

func (s *RecipeService) RemoveFavorite(ctx context.Context, req types.ToggleRecipeRequest) error {
	return s.removeRelation(ctx, favoriteRelation, req)
}

// AddToShoppingCart puts the recipe on the user's shopping list and returns the recipe.
func (s *RecipeService) AddToShoppingCart(ctx context.Context, req types.ToggleRecipeRequest) (*models.Recipe, error) {
	return s.addRelation(ctx, shoppingCartRelation, req)
}

func (s *RecipeService) RemoveFromShoppingCart(ctx context.Context, req types.ToggleRecipeRequest) error {
	return s.removeRelation(ctx, shoppingCartRelation, req)
}

func (s *RecipeService) addRelation(ctx context.Context, rel recipeRelation, req types.ToggleRecipeRequest) (*models.Recipe, error) {
	var recipe *models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if recipe, err = s.loadRecipe(tx, req.RecipeID); err != nil {
			return err
		}

		var count int64
		err = tx.Model(rel.model).
			Where("user_id = ? AND recipe_id = ?", req.UserID, req.RecipeID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return rel.errExists
		}

		if err := tx.Omit(clause.Associations).Create(rel.newRow(req)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return rel.errExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (s *RecipeService) removeRelation(ctx context.Context, rel recipeRelation, req types.ToggleRecipeRequest) error {
	if _, err := s.loadRecipe(s.db.WithContext(ctx), req.RecipeID); err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", req.UserID, req.RecipeID).
		Delete(rel.model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return rel.errMissing
	}
	return nil
}
