package api

import (
	"errors"
	"net/http"

	"webapp/user-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	authUser := c.MustGet("authUser").(*model.User)

	// This endpoint defines no request body
	if c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Request body not allowed",
			"requestID": requestID,
		})
		return
	}

	// Re-read instead of echoing the record the auth middleware resolved,
	// so an account deleted in between 404s rather than serving stale data
	var user model.User
	err := a.DB.Where("email = ?", authUser.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, user)
}
