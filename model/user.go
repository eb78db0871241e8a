// Package model defines database models
package model

import "time"

type User struct {
	ID    string `gorm:"primaryKey" json:"id"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// Argon2id PHC string, never the plaintext. Excluded from every
	// serialized response
	Password string `gorm:"not null" json:"-"`

	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`

	// A user is either unverified with a token, or verified with both
	// token fields null. Never both
	IsVerified              bool       `gorm:"default:false" json:"-"`
	VerificationToken       *string    `json:"-"`
	VerificationTokenExpiry *time.Time `json:"-"`

	AccountCreated time.Time `json:"account_created"`
	AccountUpdated time.Time `json:"account_updated"`
}
