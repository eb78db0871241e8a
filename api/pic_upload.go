package api

import (
	"errors"
	"net/http"
	"time"

	"webapp/user-api/aws"
	"webapp/user-api/model"
	"webapp/user-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *API) PicUpload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})
		return
	}

	code, f, mime, err := validators.ImageValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate image", zap.Error(err), zap.String("requestID", requestID))
			err = errors.New("internal server error")
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	imageID := uuid.NewString()
	key := aws.ImageKey(userID, imageID)

	if err := a.Storage.Put(c.Request.Context(), key, mime, fh.Filename, userID, f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload image to S3", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	image := model.Image{
		ID:         imageID,
		UserID:     userID,
		FileName:   fh.Filename,
		S3Key:      key,
		URL:        a.Storage.URL(key),
		UploadDate: time.Now(),
	}

	if err := a.DB.Create(&image).Error; err != nil {
		// The row insert is what decides the one-image-per-user race, so
		// a losing upload has to take its freshly written blob with it
		if delErr := a.Storage.Delete(c.Request.Context(), key); delErr != nil {
			zap.L().Error("Failed to clean up blob after rejected upload",
				zap.Error(delErr),
				zap.String("key", key))
		}

		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Profile picture already exists",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save image record", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, image)
}
