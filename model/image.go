package model

import "time"

type Image struct {
	ID string `gorm:"primaryKey" json:"id"`

	// The unique index is what enforces the one-image-per-user rule at
	// the storage layer instead of a racy existence pre-check
	UserID string `gorm:"uniqueIndex;not null" json:"user_id"`

	FileName string `gorm:"not null" json:"file_name"`

	// Object key inside the bucket. The public URL is stored alongside it
	// so responses don't have to re-derive it
	S3Key string `gorm:"not null" json:"-"`
	URL   string `gorm:"not null" json:"url"`

	UploadDate time.Time `json:"upload_date"`
}
