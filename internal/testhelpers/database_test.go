package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
)

func TestSetupSQLite(t *testing.T) {
	db := SetupSQLite(t)

	author := CreateUser(t, db, "chef", models.RoleUser)
	flour := CreateIngredient(t, db, "Flour", "g")
	recipe := CreateRecipe(t, db, author, "Bread", RecipeItem{flour, 500})

	var loaded models.Recipe
	err := db.Preload("Ingredients.Ingredient").First(&loaded, "id = ?", recipe.ID).Error
	require.NoError(t, err)
	require.Len(t, loaded.Ingredients, 1)
	assert.Equal(t, "Flour", loaded.Ingredients[0].Ingredient.Name)
	assert.Equal(t, 500, loaded.Ingredients[0].Amount)
}

func TestSetupSQLiteIsolated(t *testing.T) {
	first := SetupSQLite(t)
	second := SetupSQLite(t)

	CreateUser(t, first, "only-here", models.RoleUser)

	var count int64
	require.NoError(t, second.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSetupPostgres(t *testing.T) {
	db := SetupPostgres(t)

	admin := CreateUser(t, db, "admin", models.RoleAdmin)
	assert.True(t, admin.IsAdmin())

	var applied int64
	require.NoError(t, db.Table("schema_migrations").Count(&applied).Error)
	assert.Positive(t, applied)
}
