package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/metrics"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// RecipeService handles recipe operations
type RecipeService struct {
	db     *gorm.DB
	images *ImageService
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, images *ImageService) *RecipeService {
	return &RecipeService{
		db:     db,
		images: images,
	}
}

// CreateRecipe stores the recipe, its ingredient rows and its image. The rows are
// written in one transaction; the image is removed again if that transaction fails.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	if err := s.checkIngredients(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	imageURL, err := s.images.SaveDataURI(ctx, req.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        req.Name,
		Text:        req.Text,
		Image:       imageURL,
		CookingTime: req.CookingTime,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(recipe).Error; err != nil {
			return err
		}
		return insertRecipeIngredients(tx, recipe.ID, req.Ingredients)
	})
	if err != nil {
		s.discardImage(ctx, imageURL)
		return nil, err
	}

	metrics.RecipesCreated.Inc()
	return s.GetRecipe(ctx, recipe.ID)
}

// GetRecipe loads a recipe with its author and ingredients
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// UpdateRecipe replaces every field of the recipe and its whole ingredient set.
// Only the author or an admin may do this.
func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	recipe, err := s.authorize(ctx, actorID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkIngredients(ctx, req.Ingredients); err != nil {
		return nil, err
	}

	oldImage := recipe.Image
	newImage := oldImage
	if req.Image != "" {
		if newImage, err = s.images.SaveDataURI(ctx, req.Image); err != nil {
			return nil, err
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("id = ?", id).Updates(map[string]interface{}{
			"name":         req.Name,
			"text":         req.Text,
			"cooking_time": req.CookingTime,
			"image":        newImage,
		})
		if res.Error != nil {
			return res.Error
		}
		// deleted after authorize
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		if err := tx.Where("recipe_id = ?", id).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return insertRecipeIngredients(tx, id, req.Ingredients)
	})
	if err != nil {
		if newImage != oldImage {
			s.discardImage(ctx, newImage)
		}
		return nil, err
	}

	if newImage != oldImage {
		s.discardImage(ctx, oldImage)
	}
	return s.GetRecipe(ctx, id)
}

// DeleteRecipe removes the recipe together with its ingredient rows and every
// favorite and shopping-cart entry that points at it.
func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, id uuid.UUID) error {
	recipe, err := s.authorize(ctx, actorID, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{&models.Favorite{}, &models.ShoppingCartItem{}, &models.RecipeIngredient{}} {
			if err := tx.Where("recipe_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Recipe{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecipeNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.discardImage(ctx, recipe.Image)
	return nil
}

// ListRecipes returns one page of recipes matching filter, newest first, and the total match count.
func (s *RecipeService) ListRecipes(ctx context.Context, filter types.RecipeFilter) ([]models.Recipe, int64, error) {
	if filter.ViewerID == nil && (filter.IsFavorited || filter.IsInShoppingCart) {
		return []models.Recipe{}, 0, nil
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.AuthorID != nil {
			db = db.Where("recipes.author_id = ?", *filter.AuthorID)
		}
		if filter.IsFavorited {
			db = db.Where("recipes.id IN (?)", s.db.Model(&models.Favorite{}).
				Select("recipe_id").Where("user_id = ?", *filter.ViewerID))
		}
		if filter.IsInShoppingCart {
			db = db.Where("recipes.id IN (?)", s.db.Model(&models.ShoppingCartItem{}).
				Select("recipe_id").Where("user_id = ?", *filter.ViewerID))
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Scopes(scope).
		Preload("Author").
		Preload("Ingredients.Ingredient").
		Order("recipes.created_at DESC").Order("recipes.id ASC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ViewerState batch-loads the caller-relative flags for recipes. A nil viewer gets the zero state.
func (s *RecipeService) ViewerState(ctx context.Context, viewerID *uuid.UUID, recipes []models.Recipe) (types.ViewerState, error) {
	state := types.ViewerState{}
	if viewerID == nil || len(recipes) == 0 {
		return state, nil
	}

	recipeIDs := make([]uuid.UUID, len(recipes))
	authorIDs := make([]uuid.UUID, 0, len(recipes))
	seenAuthor := make(map[uuid.UUID]bool)
	for i := range recipes {
		recipeIDs[i] = recipes[i].ID
		if !seenAuthor[recipes[i].AuthorID] {
			seenAuthor[recipes[i].AuthorID] = true
			authorIDs = append(authorIDs, recipes[i].AuthorID)
		}
	}

	var favorited, inCart, subscribed []string
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Favorite{}).
		Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
		Pluck("recipe_id", &favorited).Error; err != nil {
		return state, err
	}
	if err := db.Model(&models.ShoppingCartItem{}).
		Where("user_id = ? AND recipe_id IN ?", *viewerID, recipeIDs).
		Pluck("recipe_id", &inCart).Error; err != nil {
		return state, err
	}
	if err := db.Model(&models.Subscription{}).
		Where("follower_id = ? AND author_id IN ?", *viewerID, authorIDs).
		Pluck("author_id", &subscribed).Error; err != nil {
		return state, err
	}

	state.Favorited = idSet(favorited)
	state.InCart = idSet(inCart)
	state.Subscribed = idSet(subscribed)
	return state, nil
}

// RecipeExists returns ErrRecipeNotFound when no recipe has the id.
func (s *RecipeService) RecipeExists(ctx context.Context, id uuid.UUID) error {
	_, err := s.loadRecipe(s.db.WithContext(ctx), id)
	return err
}

func (s *RecipeService) loadRecipe(db *gorm.DB, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// authorize loads the recipe and checks that actorID may modify it.
func (s *RecipeService) authorize(ctx context.Context, actorID, id uuid.UUID) (*models.Recipe, error) {
	recipe, err := s.loadRecipe(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID == actorID {
		return recipe, nil
	}

	var actor models.User
	if err := s.db.WithContext(ctx).First(&actor, "id = ?", actorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	return recipe, nil
}

// checkIngredients rejects empty sets, repeated ids and ids missing from the catalog.
func (s *RecipeService) checkIngredients(ctx context.Context, items []types.IngredientAmount) error {
	if len(items) == 0 {
		return fieldError("ingredients", "at least one ingredient is required")
	}

	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return fieldError("ingredients", "amount must be at least 1")
		}
		if seen[item.ID] {
			return fieldError("ingredients", "ingredients must not repeat")
		}
		seen[item.ID] = true
		ids = append(ids, item.ID)
	}

	var found []string
	err := s.db.WithContext(ctx).Model(&models.Ingredient{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return err
	}
	known := idSet(found)
	for _, id := range ids {
		if !known[id] {
			return fieldError("ingredients", "ingredient "+id.String()+" does not exist")
		}
	}
	return nil
}

func insertRecipeIngredients(tx *gorm.DB, recipeID uuid.UUID, items []types.IngredientAmount) error {
	rows := make([]models.RecipeIngredient, len(items))
	for i, item := range items {
		rows[i] = models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		}
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (s *RecipeService) discardImage(ctx context.Context, url string) {
	if url == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, url); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("image", url).Msg("failed to delete recipe image")
	}
}
