package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	recipes := service.NewRecipeService(db, nil)
	shopping := service.NewShoppingListService(db)
	author := testhelpers.CreateUser(t, db, "author", models.RoleUser)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)
	other := testhelpers.CreateUser(t, db, "other", models.RoleUser)
	flour := testhelpers.CreateIngredient(t, db, "Flour", "g")
	flourCups := testhelpers.CreateIngredient(t, db, "Flour", "cup")
	egg := testhelpers.CreateIngredient(t, db, "Egg", "pcs")

	cake := testhelpers.CreateRecipe(t, db, author, "cake",
		testhelpers.RecipeItem{Ingredient: flour, Amount: 300},
		testhelpers.RecipeItem{Ingredient: egg, Amount: 3},
	)
	bread := testhelpers.CreateRecipe(t, db, author, "bread",
		testhelpers.RecipeItem{Ingredient: flour, Amount: 200},
		testhelpers.RecipeItem{Ingredient: flourCups, Amount: 1},
	)
	ctx := context.Background()

	for _, r := range []*models.Recipe{bread, cake} {
		_, err := recipes.AddToShoppingCart(ctx, types.ToggleRecipeRequest{UserID: user.ID, RecipeID: r.ID})
		require.NoError(t, err)
	}
	_, err := recipes.AddToShoppingCart(ctx, types.ToggleRecipeRequest{UserID: other.ID, RecipeID: cake.ID})
	require.NoError(t, err)

	lines, err := shopping.Aggregate(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []service.ShoppingListLine{
		{Name: "Egg", MeasurementUnit: "pcs", Amount: 3},
		{Name: "Flour", MeasurementUnit: "cup", Amount: 1},
		{Name: "Flour", MeasurementUnit: "g", Amount: 500},
	}, lines)

	assert.Equal(t,
		"Список продуктов:\nEgg (pcs) — 3\nFlour (cup) — 1\nFlour (g) — 500\n",
		service.RenderShoppingList(lines))
}

func TestAggregateEmptyCart(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)

	lines, err := service.NewShoppingListService(db).Aggregate(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
	assert.Equal(t, service.ShoppingListHeader+"\n", service.RenderShoppingList(lines))
}

func TestAggregateMergesIngredientsWithSameNameAndUnit(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	author := testhelpers.CreateUser(t, db, "author", models.RoleUser)
	flourA := testhelpers.CreateIngredient(t, db, "Flour", "g")
	flourB := testhelpers.CreateIngredient(t, db, "Flour", "g")
	require.NotEqual(t, flourA.ID, flourB.ID)
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")

	cake := testhelpers.CreateRecipe(t, db, author, "cake",
		testhelpers.RecipeItem{Ingredient: flourA, Amount: 300},
		testhelpers.RecipeItem{Ingredient: salt, Amount: 5},
	)
	bread := testhelpers.CreateRecipe(t, db, author, "bread",
		testhelpers.RecipeItem{Ingredient: flourB, Amount: 200},
	)
	want := "Список продуктов:\nFlour (g) — 500\nSalt (g) — 5\n"

	orders := map[string][]*models.Recipe{
		"cake first":  {cake, bread},
		"bread first": {bread, cake},
	}
	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			user := testhelpers.CreateUser(t, db, "cook-"+order[0].Name, models.RoleUser)
			recipes := service.NewRecipeService(db, nil)
			for _, r := range order {
				_, err := recipes.AddToShoppingCart(context.Background(), types.ToggleRecipeRequest{UserID: user.ID, RecipeID: r.ID})
				require.NoError(t, err)
			}

			lines, err := service.NewShoppingListService(db).Aggregate(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Equal(t, want, service.RenderShoppingList(lines))
		})
	}
}
