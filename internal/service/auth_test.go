package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

const testSecret = "test-secret"

func TestRegister(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	ctx := context.Background()

	req := &types.RegisterRequest{
		Email:     "  Cook@Example.com ",
		Username:  "cook",
		FirstName: "Ivan",
		LastName:  "Petrov",
		Password:  "long-enough-pass",
	}
	user, err := auth.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "cook@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, req.Password, user.PasswordHash)

	_, err = auth.Register(ctx, &types.RegisterRequest{
		Email: "cook@example.com", Username: "other", FirstName: "A", LastName: "B", Password: "long-enough-pass",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)

	_, err = auth.Register(ctx, &types.RegisterRequest{
		Email: "other@example.com", Username: "cook", FirstName: "A", LastName: "B", Password: "long-enough-pass",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleAdmin)
	ctx := context.Background()

	token, err := auth.Login(ctx, "cook@example.com", testhelpers.TestPassword)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "cook", claims.Username)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = auth.Login(ctx, "cook@example.com", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "nobody@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)
	ctx := context.Background()

	other, err := service.NewAuthService(db, "another-secret", time.Hour).GenerateToken(user)
	require.NoError(t, err)
	_, err = auth.ValidateToken(ctx, other)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expired, err := service.NewAuthService(db, testSecret, time.Nanosecond).GenerateToken(user)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = auth.ValidateToken(ctx, expired)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	noIssuer := jwt.NewWithClaims(jwt.SigningMethodHS256, &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: user.ID,
	})
	signed, err := noIssuer.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(ctx, signed)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	_, err = auth.ValidateToken(ctx, "not.a.token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)
	ctx := context.Background()

	first, err := auth.GenerateToken(user)
	require.NoError(t, err)
	second, err := auth.GenerateToken(user)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(ctx, first)
	require.NoError(t, err)
	require.NoError(t, auth.Logout(ctx, claims))
	require.NoError(t, auth.Logout(ctx, claims))

	_, err = auth.ValidateToken(ctx, first)
	assert.ErrorIs(t, err, service.ErrTokenRevoked)
	_, err = auth.ValidateToken(ctx, second)
	assert.NoError(t, err)
}

func TestLogoutPurgesExpiredRevocations(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	ctx := context.Background()

	stale := models.RevokedToken{JTI: uuid.NewString(), ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(&stale).Error)

	claims := &types.TokenClaims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	require.NoError(t, auth.Logout(ctx, claims))

	var jtis []string
	require.NoError(t, db.Model(&models.RevokedToken{}).Pluck("jti", &jtis).Error)
	assert.Equal(t, []string{claims.ID}, jtis)
}

func TestSetPassword(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	auth := service.NewAuthService(db, testSecret, time.Hour)
	user := testhelpers.CreateUser(t, db, "cook", models.RoleUser)
	ctx := context.Background()

	err := auth.SetPassword(ctx, user.ID, "wrong", "new-password")
	assert.ErrorIs(t, err, service.ErrWrongPassword)

	require.NoError(t, auth.SetPassword(ctx, user.ID, testhelpers.TestPassword, "new-password"))

	_, err = auth.Login(ctx, "cook@example.com", testhelpers.TestPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, err = auth.Login(ctx, "cook@example.com", "new-password")
	assert.NoError(t, err)

	err = auth.SetPassword(ctx, uuid.New(), "x", "y")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
