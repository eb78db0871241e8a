// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDialects  = []string{"postgres", "sqlite"}
)

// Setup prepares everything config-related so that the app can start
// working. Function will return an error if something is critically
// wrong and the application can't run because of that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")

	v.BindEnv("db.dialect", "db_dialect")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("aws.region", "aws_region")
	v.BindEnv("aws.access_key_id", "aws_access_key_id")
	v.BindEnv("aws.secret_access_key", "aws_secret_access_key")
	v.BindEnv("aws.bucket", "s3_bucket_name")
	v.BindEnv("aws.sns_topic_arn", "sns_topic_arn")

	v.BindEnv("upload.max_size", "upload_max_size")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)

	v.SetDefault("db.dialect", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	// Profile pictures, not videos. 5 MiB is plenty
	v.SetDefault("upload.max_size", 5)

	if err := v.ReadInConfig(); err != nil {
		// The whole config can come from the environment, so a missing
		// config.toml is fine
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDialects, v.GetString("db.dialect")) {
		return errors.New("invalid database dialect provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("database dsn can't be empty")
	}

	if v.GetString("aws.region") == "" {
		return errors.New("region can't be empty")
	}

	if v.GetString("aws.bucket") == "" {
		return errors.New("bucket can't be empty")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("aws.sns_topic_arn") == "" {
		fmt.Println("[WARNING]: No SNS topic configured. Registration notifications won't be dispatched")
	}

	v.Set("upload.max_size", v.GetInt64("upload.max_size")<<20)
	return nil
}
