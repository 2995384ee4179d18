package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/models"
)

// RequireAdmin lets only admins through. It must run after AuthMiddleware.
// The role is read from the database, not from the token.
func RequireAdmin(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication credentials were not provided"})
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "user not found"})
				return
			}
			logging.Ctx(c.Request.Context()).Error().Err(err).Msg("failed to load user role")
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to verify user role"})
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "you do not have permission to perform this action"})
			return
		}

		c.Next()
	}
}
