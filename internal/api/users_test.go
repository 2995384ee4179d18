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

func TestListUsersPagination(t *testing.T) {
	a := setupTestAPI(t)
	for i := 0; i < 8; i++ {
		testhelpers.CreateUser(t, a.db, fmt.Sprintf("user%d", i), models.RoleUser)
	}

	w := a.do(t, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[types.Page[types.UserResponse]](t, w)
	assert.Equal(t, int64(8), page.Count)
	assert.Len(t, page.Results, 6)
	require.NotNil(t, page.Next)
	assert.Equal(t, testBaseURL+"/api/users?page=2", *page.Next)
	assert.Nil(t, page.Previous)

	w = a.do(t, http.MethodGet, "/api/users?page=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.UserResponse]](t, w)
	assert.Len(t, page.Results, 2)
	assert.Nil(t, page.Next)
	require.NotNil(t, page.Previous)
	assert.Equal(t, testBaseURL+"/api/users", *page.Previous)

	w = a.do(t, http.MethodGet, "/api/users?limit=3&page=2", "", nil)
	page = decode[types.Page[types.UserResponse]](t, w)
	assert.Len(t, page.Results, 3)
	require.NotNil(t, page.Next)
	assert.Equal(t, testBaseURL+"/api/users?limit=3&page=3", *page.Next)

	w = a.do(t, http.MethodGet, "/api/users?page=9", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[types.Page[types.UserResponse]](t, w)
	assert.Empty(t, page.Results)
	assert.NotNil(t, page.Results)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/users?page=0", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/users?limit=abc", "", nil).Code)
}

func TestMe(t *testing.T) {
	a := setupTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook", models.RoleUser)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/users/me", "", nil).Code)

	w := a.do(t, http.MethodGet, "/api/users/me", a.token(t, user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[types.UserResponse](t, w)
	assert.Equal(t, user.ID, me.ID)
	assert.Nil(t, me.Avatar)
}

func TestGetUserShowsSubscription(t *testing.T) {
	a := setupTestAPI(t)
	viewer := testhelpers.CreateUser(t, a.db, "viewer", models.RoleUser)
	author := testhelpers.CreateUser(t, a.db, "author", models.RoleUser)
	token := a.token(t, viewer)
	path := "/api/users/" + author.ID.String()

	w := a.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.UserResponse](t, w).IsSubscribed)

	require.NoError(t, a.db.Create(&models.Subscription{FollowerID: viewer.ID, AuthorID: author.ID}).Error)

	w = a.do(t, http.MethodGet, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[types.UserResponse](t, w).IsSubscribed)
}

func TestGetUserNotFound(t *testing.T) {
	a := setupTestAPI(t)
	token := a.token(t, testhelpers.CreateUser(t, a.db, "cook", models.RoleUser))

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/users/not-a-uuid", token, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/users/00000000-0000-0000-0000-000000000001", token, nil).Code)
}
