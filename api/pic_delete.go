package api

import (
	"errors"
	"net/http"

	"webapp/user-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) PicDelete(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var image model.Image
	err := a.DB.Where("user_id = ?", userID).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "Profile picture not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch image record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Row first, blob second. A failed blob delete is logged for
	// out-of-band cleanup instead of leaving a row pointing at nothing
	if err := a.DB.Delete(model.Image{}, "id = ?", image.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to delete image record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.Storage.Delete(c.Request.Context(), image.S3Key); err != nil {
		zap.L().Error("Failed to delete blob, leaving it for out-of-band cleanup",
			zap.Error(err),
			zap.String("key", image.S3Key))
	}

	c.Status(http.StatusNoContent)
}
