package api

import (
	"net/http"
	"time"

	"webapp/user-api/model"
	"webapp/user-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type updateBody struct {
	Email     *string `json:"email"`
	Password  *string `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

func (a *API) UserUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	authUser := c.MustGet("authUser").(*model.User)

	var data updateBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	// Email is immutable after creation, even to its owner
	if data.Email != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email can't be changed",
			"requestID": requestID,
		})
		return
	}

	if data.FirstName == nil && data.LastName == nil && data.Password == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No updatable fields provided",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{
		"account_updated": time.Now(),
	}

	if data.FirstName != nil || data.LastName != nil {
		first, last := authUser.FirstName, authUser.LastName
		if data.FirstName != nil {
			first = *data.FirstName
		}
		if data.LastName != nil {
			last = *data.LastName
		}

		if err := validators.NameValidator(first, last); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		if data.FirstName != nil {
			updates["first_name"] = first
		}
		if data.LastName != nil {
			updates["last_name"] = last
		}
	}

	if data.Password != nil {
		if err := validators.PasswordValidator(*data.Password); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		hash, err := a.Argon.GenerateFromPassword(*data.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		updates["password"] = hash
	}

	r := a.DB.Model(model.User{}).
		Where("email = ?", authUser.Email).
		Updates(updates)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if r.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"error":     "User not found",
			"requestID": requestID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}
