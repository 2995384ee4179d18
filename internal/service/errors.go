package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrIngredientNotFound = errors.New("ingredient not found")

	ErrForbidden = errors.New("you do not have permission to perform this action")

	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrEmailTaken         = errors.New("a user with this email already exists")
	ErrUsernameTaken      = errors.New("a user with this username already exists")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")

	ErrAlreadyFavorited      = errors.New("recipe is already in favorites")
	ErrNotFavorited          = errors.New("recipe is not in favorites")
	ErrAlreadyInShoppingCart = errors.New("recipe is already in the shopping cart")
	ErrNotInShoppingCart     = errors.New("recipe is not in the shopping cart")

	ErrCannotSubscribeToSelf = errors.New("you cannot subscribe to yourself")
	ErrAlreadySubscribed     = errors.New("you are already subscribed to this author")
	ErrNotSubscribed         = errors.New("you are not subscribed to this author")

	ErrInvalidImage = errors.New("invalid image")
)

// ValidationError carries field-level messages for a rejected payload.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
