package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims represents the claims in an access token. RegisteredClaims.ID is the
// token id checked against the revocation table on every request.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
}

// TokenResponse is returned by the login endpoint.
type TokenResponse struct {
	AuthToken string `json:"auth_token"`
}
