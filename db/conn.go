// Package db contains the database connection setup
package db

import (
	"fmt"

	"webapp/user-api/model"

	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func New() (*gorm.DB, error) {
	var dial gorm.Dialector

	switch viper.GetString("db.dialect") {
	case "postgres":
		dial = postgres.Open(viper.GetString("db.dsn"))
	default:
		dial = sqlite.Open(viper.GetString("db.dsn"))
	}

	// TranslateError turns driver-specific unique constraint violations
	// into gorm.ErrDuplicatedKey. The email and one-image-per-user
	// invariants depend on that mapping
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database, %w", err)
	}

	err = db.AutoMigrate(model.User{}, model.Image{}, model.EmailRecord{})
	if err != nil {
		return nil, fmt.Errorf("failed to automigrate tables, %w", err)
	}

	return db, nil
}
