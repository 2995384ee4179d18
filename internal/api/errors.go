package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// respondError writes the status and body matching err.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: "validation failed", Fields: verr.Fields})

	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error(), Fields: map[string]string{"email": err.Error()}})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error(), Fields: map[string]string{"username": err.Error()}})
	case errors.Is(err, service.ErrWrongPassword):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error(), Fields: map[string]string{"current_password": err.Error()}})

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrIngredientNotFound):
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, middleware.ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrTokenRevoked):
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: err.Error()})

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAlreadyFavorited),
		errors.Is(err, service.ErrNotFavorited),
		errors.Is(err, service.ErrAlreadyInShoppingCart),
		errors.Is(err, service.ErrNotInShoppingCart),
		errors.Is(err, service.ErrCannotSubscribeToSelf),
		errors.Is(err, service.ErrAlreadySubscribed),
		errors.Is(err, service.ErrNotSubscribed),
		errors.Is(err, service.ErrInvalidImage):
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: err.Error()})

	default:
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorResponse{Error: "internal server error"})
	}
}

// bindJSON decodes and validates the body into obj, answering 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		fields := validation.Fields(err)
		if fields == nil {
			fields = map[string]string{"non_field_errors": "invalid request body"}
		}
		respondError(c, &service.ValidationError{Fields: fields})
		return false
	}
	return true
}

// pathID parses the :id route parameter. An id that is not a uuid cannot exist,
// so it is answered with notFound.
func pathID(c *gin.Context, notFound error) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, notFound)
		return uuid.Nil, false
	}
	return id, true
}

// requireUser returns the authenticated caller or answers 401.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, middleware.ErrorResponse{Error: "authentication credentials were not provided"})
		return uuid.Nil, false
	}
	return userID, true
}

// viewer returns the caller for optionally authenticated routes.
func viewer(c *gin.Context) *uuid.UUID {
	if userID, ok := middleware.CurrentUserID(c); ok {
		return &userID
	}
	return nil
}
