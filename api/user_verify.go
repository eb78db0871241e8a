package api

import (
	"errors"
	"net/http"
	"time"

	"webapp/user-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) UserVerify(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	email := c.Query("email")
	if token == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Verification token and email are required",
			"requestID": requestID,
		})
		return
	}

	// A single query covers every mismatch: wrong token, expired token,
	// already verified (token is null), unknown email. They all produce
	// the same response so the endpoint can't be used to probe which
	// emails are registered
	var user model.User
	err := a.DB.
		Where("email = ? AND verification_token = ? AND verification_token_expiry > ?",
			email, token, time.Now()).
		First(&user).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid or expired token",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Clearing the token in the same transaction makes it single-use:
	// a replay no longer matches the query above
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(model.User{}).
			Where("id = ?", user.ID).
			Updates(map[string]any{
				"is_verified":               true,
				"verification_token":        nil,
				"verification_token_expiry": nil,
				"account_updated":           time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Model(model.EmailRecord{}).
			Where("email = ? AND verification_token = ?", email, token).
			Update("status", model.EmailVerified).
			Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark user as verified", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email verified successfully",
		"requestID": requestID,
	})
}
