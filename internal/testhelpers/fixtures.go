package testhelpers

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
)

// TestPassword is the plain-text password of every user created by CreateUser.
const TestPassword = "s3cret-pass"

// PNGDataURI is a valid 1x1 PNG encoded as a data URI.
const PNGDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var passwordHash []byte

// CreateUser inserts a user named username with TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	if passwordHash == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		passwordHash = hash
	}

	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: string(passwordHash),
		Role:         role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()

	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	if err := db.Create(ingredient).Error; err != nil {
		t.Fatalf("failed to create ingredient %s: %v", name, err)
	}
	return ingredient
}

// RecipeItem is an ingredient and amount for CreateRecipe.
type RecipeItem struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe directly, bypassing image handling. Each call is
// stamped one second after the previous one so list ordering is deterministic.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, items ...RecipeItem) *models.Recipe {
	t.Helper()

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix everything.",
		Image:       "/media/recipes/images/" + name + ".png",
		CookingTime: 10,
		CreatedAt:   nextTimestamp(),
	}
	if err := db.Omit(clause.Associations).Create(recipe).Error; err != nil {
		t.Fatalf("failed to create recipe %s: %v", name, err)
	}

	for _, item := range items {
		row := models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.Ingredient.ID,
			Amount:       item.Amount,
		}
		if err := db.Omit(clause.Associations).Create(&row).Error; err != nil {
			t.Fatalf("failed to add %s to recipe %s: %v", item.Ingredient.Name, name, err)
		}
		row.Ingredient = *item.Ingredient
		recipe.Ingredients = append(recipe.Ingredients, row)
	}
	return recipe
}

var clock = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func nextTimestamp() time.Time {
	clock = clock.Add(time.Second)
	return clock
}
