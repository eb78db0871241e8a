// Package service contains business operations shared between endpoints
package service

import (
	"context"
	"encoding/json"
	"time"

	"webapp/user-api/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Publisher is the narrow pub/sub surface the dispatcher needs
type Publisher interface {
	Publish(ctx context.Context, message []byte) error
}

// Dispatcher publishes a verification notification for each freshly
// registered user and keeps the append-only audit trail. The publish is
// best-effort: failures are logged and audited but never surface to the
// registration caller
type Dispatcher struct {
	DB  *gorm.DB
	Pub Publisher
}

// VerificationPath is the route the mail consumer links back to,
// appended to the base URL taken from the inbound request
const VerificationPath = "/user/self/verify"

type verificationMessage struct {
	Email             string `json:"email"`
	UserID            string `json:"user_id"`
	VerificationToken string `json:"verificationToken"`
	BaseURL           string `json:"baseURL"`
	VerificationPath  string `json:"verificationPath"`
}

// Dispatch runs after the user row is committed. It writes exactly one
// audit record, PUBLISHED or FAILED, unless no topic is configured in
// which case the whole step is skipped
func (d *Dispatcher) Dispatch(ctx context.Context, user *model.User, token, baseURL string) {
	if d.Pub == nil {
		zap.L().Warn("No notification topic configured, skipping dispatch",
			zap.String("email", user.Email))
		return
	}

	msg, err := json.Marshal(verificationMessage{
		Email:             user.Email,
		UserID:            user.ID,
		VerificationToken: token,
		BaseURL:           baseURL,
		VerificationPath:  VerificationPath,
	})
	if err != nil {
		zap.L().Error("Failed to marshal notification message", zap.Error(err))
		return
	}

	status := model.EmailPublished
	if err := d.Pub.Publish(ctx, msg); err != nil {
		zap.L().Error("Failed to publish notification",
			zap.Error(err),
			zap.String("email", user.Email))
		status = model.EmailFailed
	}

	record := model.EmailRecord{
		ID:                uuid.NewString(),
		Email:             user.Email,
		VerificationToken: token,
		Status:            status,
		CreatedAt:         time.Now(),
	}
	if err := d.DB.WithContext(ctx).Create(&record).Error; err != nil {
		zap.L().Error("Failed to write notification audit record", zap.Error(err))
	}
}
