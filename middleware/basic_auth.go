package middleware

import (
	"errors"
	"net/http"

	"webapp/user-api/model"
	"webapp/user-api/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewBasicAuthMiddleware guards the self-service endpoints. Unknown
// users and wrong passwords both map to 401 so the responses can't be
// used to probe which emails are registered. Correct credentials on an
// unverified account map to 403, which is a different failure and is
// allowed to say so
func NewBasicAuthMiddleware(d *gorm.DB, argon *security.ArgonHash) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		email, password, ok := c.Request.BasicAuth()
		if !ok || email == "" || password == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Missing credentials",
				"requestID": requestID,
			})
			return
		}

		var user model.User
		err := d.Where("email = ?", email).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":     "Invalid credentials",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to look up user during auth", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		ok, err = argon.VerifyPasswd(password, user.Password)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "Invalid credentials",
				"requestID": requestID,
			})
			return
		}

		if !user.IsVerified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     "Please verify your account before using the service",
				"requestID": requestID,
			})
			return
		}

		c.Set("authUser", &user)
		c.Set("userID", user.ID)
		c.Next()
	}
}
