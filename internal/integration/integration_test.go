package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

type client struct {
	t      *testing.T
	engine *gin.Engine
}

func (c client) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func setup(t *testing.T) (client, *gorm.DB) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupPostgres(t)

	cfg := &config.Config{
		BaseURL:   "http://foodgram.test",
		JWTSecret: "integration-secret",
		PageSize:  6,
		MediaRoot: t.TempDir(),
		MediaURL:  "/media",
	}
	images := service.NewLocalImageStore(cfg.MediaRoot, cfg.BaseURL+cfg.MediaURL)
	engine, err := router.SetupRouter(db, api.NewServices(db, cfg, images), nil, cfg)
	require.NoError(t, err)
	return client{t: t, engine: engine}, db
}

func TestRecipeJourney(t *testing.T) {
	c, db := setup(t)

	w := c.do(http.MethodPost, "/api/users", "", map[string]string{
		"email":      "chef@example.com",
		"username":   "chef",
		"first_name": "Gordon",
		"last_name":  "Ramsay",
		"password":   "very-secret-pass",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	chefID := decode[types.UserResponse](t, w).ID

	w = c.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "chef@example.com",
		"password": "very-secret-pass",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	chefToken := decode[types.TokenResponse](t, w).AuthToken

	added, err := service.NewIngredientService(db).BulkLoad(context.Background(), []types.CreateIngredientRequest{
		{Name: "Мука", MeasurementUnit: "г"},
		{Name: "Молоко", MeasurementUnit: "мл"},
		{Name: "100% juice", MeasurementUnit: "мл"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, added)

	w = c.do(http.MethodGet, "/api/ingredients?name=100%25", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[[]types.IngredientResponse](t, w), 1)

	w = c.do(http.MethodGet, "/api/ingredients?name=м", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	catalog := decode[[]types.IngredientResponse](t, w)
	require.Len(t, catalog, 2)

	items := make([]types.IngredientAmount, len(catalog))
	for i, ing := range catalog {
		items[i] = types.IngredientAmount{ID: ing.ID, Amount: 100 * (i + 1)}
	}
	w = c.do(http.MethodPost, "/api/recipes", chefToken, map[string]interface{}{
		"name":         "Блины",
		"text":         "Смешать и жарить.",
		"cooking_time": 30,
		"image":        testhelpers.PNGDataURI,
		"ingredients":  items,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	recipe := decode[types.RecipeResponse](t, w)
	assert.Len(t, recipe.Ingredients, 2)

	fan := testhelpers.CreateUser(t, db, "fan", models.RoleUser)
	w = c.do(http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "fan@example.com",
		"password": testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code)
	fanToken := decode[types.TokenResponse](t, w).AuthToken

	recipePath := "/api/recipes/" + recipe.ID.String()
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, recipePath+"/favorite", fanToken, nil).Code)
	require.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, recipePath+"/favorite", fanToken, nil).Code)
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, recipePath+"/shopping_cart", fanToken, nil).Code)

	w = c.do(http.MethodPost, "/api/users/"+chefID.String()+"/subscribe", fanToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, int64(1), decode[types.AuthorWithRecipesResponse](t, w).RecipesCount)

	w = c.do(http.MethodGet, "/api/recipes?is_favorited=1", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.RecipeResponse]](t, w)
	require.Equal(t, int64(1), page.Count)
	assert.True(t, page.Results[0].IsFavorited)
	assert.True(t, page.Results[0].IsInShoppingCart)
	assert.True(t, page.Results[0].Author.IsSubscribed)

	w = c.do(http.MethodGet, "/api/recipes/download_shopping_cart", fanToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), service.ShoppingListHeader+"\n")
	assert.Contains(t, w.Body.String(), "Мука (г) — ")

	assert.Equal(t, http.StatusForbidden, c.do(http.MethodDelete, recipePath, fanToken, nil).Code)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, recipePath, chefToken, nil).Code)

	var favorites int64
	require.NoError(t, db.Model(&models.Favorite{}).Where("user_id = ?", fan.ID).Count(&favorites).Error)
	assert.Zero(t, favorites)

	assert.Equal(t, http.StatusNoContent, c.do(http.MethodPost, "/api/auth/token/logout", fanToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/users/me", fanToken, nil).Code)
}

func TestDatabaseConstraints(t *testing.T) {
	_, db := setup(t)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)
	recipe := testhelpers.CreateRecipe(t, db, user, "soup")

	require.NoError(t, db.Omit(clause.Associations).Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err := db.Omit(clause.Associations).Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = db.Omit(clause.Associations).Create(&models.Subscription{FollowerID: user.ID, AuthorID: user.ID}).Error
	assert.Error(t, err)
}
