package api

import (
	"errors"
	"net/http"
	"time"

	"webapp/user-api/model"
	"webapp/user-api/util"
	"webapp/user-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Verification tokens are short-lived on purpose. The dispatched mail
// is expected to be acted on right away
const tokenTTL = 2 * time.Minute

type createBody struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (a *API) UserCreate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	// Registration is anonymous. Supplied credentials mean the client is
	// confused about what it's calling
	if c.GetHeader("Authorization") != "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Credentials must not be supplied when registering",
			"requestID": requestID,
		})
		return
	}

	var data createBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(data.Email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.NameValidator(data.FirstName, data.LastName); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	// Hash synchronously before the row ever becomes visible
	hash, err := a.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := util.GenerateToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	now := time.Now()
	expiry := now.Add(tokenTTL)

	user := model.User{
		ID:                      uuid.NewString(),
		Email:                   data.Email,
		Password:                hash,
		FirstName:               data.FirstName,
		LastName:                data.LastName,
		IsVerified:              false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
		AccountCreated:          now,
		AccountUpdated:          now,
	}

	if err := a.DB.Create(&user).Error; err != nil {
		// The unique index on email is the real duplicate check, not a
		// racy read-then-write
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "This email is already registered",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Best-effort notification leg, runs after the row is committed.
	// Failures are logged and audited inside the dispatcher and never
	// fail the registration
	a.Notifier.Dispatch(c.Request.Context(), &user, token, baseURL(c))

	c.JSON(http.StatusCreated, user)
}

// baseURL reconstructs the externally visible origin of the request.
// Behind a load balancer the original protocol arrives in
// X-Forwarded-Proto
func baseURL(c *gin.Context) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if c.Request.TLS != nil {
			scheme = "https"
		}
	}

	return scheme + "://" + c.Request.Host
}
