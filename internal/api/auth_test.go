package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func registerPayload(username string) map[string]string {
	return map[string]string{
		"email":      username + "@example.com",
		"username":   username,
		"first_name": "Вася",
		"last_name":  "Pupkin",
		"password":   "long-enough-pass",
	}
}

func TestRegister(t *testing.T) {
	a := setupTestAPI(t)

	w := a.do(t, http.MethodPost, "/api/users", "", registerPayload("vasya"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	user := decode[types.UserResponse](t, w)
	assert.Equal(t, "vasya", user.Username)
	assert.Equal(t, "vasya@example.com", user.Email)
	assert.False(t, user.IsSubscribed)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegisterRejectsInvalidPayloads(t *testing.T) {
	a := setupTestAPI(t)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/users", "", registerPayload("taken")).Code)

	tests := []struct {
		name      string
		mutate    func(map[string]string)
		wantField string
	}{
		{
			name: "duplicate email",
			mutate: func(p map[string]string) {
				p["username"] = "other"
				p["email"] = "taken@example.com"
			},
			wantField: "email",
		},
		{
			name:      "duplicate username",
			mutate:    func(p map[string]string) { p["username"] = "taken" },
			wantField: "username",
		},
		{
			name:      "reserved username",
			mutate:    func(p map[string]string) { p["username"] = "me" },
			wantField: "username",
		},
		{
			name:      "bad email",
			mutate:    func(p map[string]string) { p["email"] = "not-an-email" },
			wantField: "email",
		},
		{
			name:      "missing first name",
			mutate:    func(p map[string]string) { delete(p, "first_name") },
			wantField: "first_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := registerPayload("fresh")
			tt.mutate(payload)

			w := a.do(t, http.MethodPost, "/api/users", "", payload)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			resp := decode[middleware.ErrorResponse](t, w)
			assert.Contains(t, resp.Fields, tt.wantField)
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	a := setupTestAPI(t)
	testhelpers.CreateUser(t, a.db, "cook", models.RoleUser)

	w := a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "COOK@example.com",
		"password": testhelpers.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[types.TokenResponse](t, w).AuthToken
	require.NotEmpty(t, token)

	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/users/me", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(t, http.MethodPost, "/api/auth/token/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/users/me", token, nil).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	a := setupTestAPI(t)
	testhelpers.CreateUser(t, a.db, "cook", models.RoleUser)

	w := a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSetPassword(t *testing.T) {
	a := setupTestAPI(t)
	user := testhelpers.CreateUser(t, a.db, "cook", models.RoleUser)
	token := a.token(t, user)

	w := a.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": "not-it",
		"new_password":     "brand-new-pass",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[middleware.ErrorResponse](t, w).Fields, "current_password")

	w = a.do(t, http.MethodPost, "/api/users/set_password", token, map[string]string{
		"current_password": testhelpers.TestPassword,
		"new_password":     "brand-new-pass",
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/auth/token/login", "", map[string]string{
		"email":    "cook@example.com",
		"password": "brand-new-pass",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetPasswordRequiresAuth(t *testing.T) {
	a := setupTestAPI(t)
	w := a.do(t, http.MethodPost, "/api/users/set_password", "", map[string]string{
		"current_password": "x",
		"new_password":     "brand-new-pass",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
