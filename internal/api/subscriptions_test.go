package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestSubscribeFlow(t *testing.T) {
	a := setupTestAPI(t)
	follower := testhelpers.CreateUser(t, a.db, "follower", models.RoleUser)
	author := testhelpers.CreateUser(t, a.db, "author", models.RoleUser)
	for i := 0; i < 5; i++ {
		testhelpers.CreateRecipe(t, a.db, author, fmt.Sprintf("dish%d", i))
	}
	token := a.token(t, follower)
	path := "/api/users/" + author.ID.String() + "/subscribe"

	w := a.do(t, http.MethodPost, path+"?recipes_limit=2", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[types.AuthorWithRecipesResponse](t, w)
	assert.Equal(t, author.ID, entry.ID)
	assert.True(t, entry.IsSubscribed)
	assert.Equal(t, int64(5), entry.RecipesCount)
	require.Len(t, entry.Recipes, 2)
	assert.Equal(t, "dish4", entry.Recipes[0].Name)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodPost, path, token, nil).Code)

	w = a.do(t, http.MethodGet, "/api/users/subscriptions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.AuthorWithRecipesResponse]](t, w)
	require.Equal(t, int64(1), page.Count)
	assert.Len(t, page.Results[0].Recipes, 3)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodDelete, path, token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodDelete, path, token, nil).Code)

	w = a.do(t, http.MethodGet, "/api/users/subscriptions", token, nil)
	assert.Equal(t, int64(0), decode[types.Page[types.AuthorWithRecipesResponse]](t, w).Count)
}

func TestSubscribeToSelf(t *testing.T) {
	a := setupTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "narcissus", models.RoleUser)

	w := a.do(t, http.MethodPost, "/api/users/"+user.ID.String()+"/subscribe", a.token(t, user), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, a.db.Model(&models.Subscription{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubscribeErrors(t *testing.T) {
	a := setupTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook", models.RoleUser)
	author := testhelpers.CreateUser(t, a.db, "author", models.RoleUser)
	token := a.token(t, user)

	assert.Equal(t, http.StatusUnauthorized,
		a.do(t, http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe", "", nil).Code)
	assert.Equal(t, http.StatusNotFound,
		a.do(t, http.MethodPost, "/api/users/00000000-0000-0000-0000-000000000001/subscribe", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodPost, "/api/users/"+author.ID.String()+"/subscribe?recipes_limit=-1", token, nil).Code)
	assert.Equal(t, http.StatusBadRequest,
		a.do(t, http.MethodGet, "/api/users/subscriptions?recipes_limit=x", token, nil).Code)
}
