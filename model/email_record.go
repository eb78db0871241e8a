package model

import "time"

const (
	EmailPublished = "PUBLISHED"
	EmailFailed    = "FAILED"
	EmailVerified  = "VERIFIED"
)

// EmailRecord is an append-only audit trail of notification dispatch
// attempts. The only allowed mutation is the transition to VERIFIED once
// the matching token is consumed. Nothing reads these records to make
// decisions
type EmailRecord struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	Email             string    `gorm:"index;not null" json:"email"`
	VerificationToken string    `json:"verification_token"`
	Status            string    `gorm:"not null" json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
