// Package api contains all endpoints available
package api

import (
	"fmt"
	"net/http"
	"time"

	"webapp/user-api/aws"
	"webapp/user-api/db"
	"webapp/user-api/middleware"
	"webapp/user-api/security"
	"webapp/user-api/service"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Storage  aws.ObjectStore
	Notifier *service.Dispatcher
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	a.Argon = security.New()

	s3, err := aws.NewS3()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
	}
	a.Storage = s3

	sns, err := aws.NewSNS()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SNS client, %w", err)
	}

	a.Notifier = &service.Dispatcher{DB: db}
	if sns != nil {
		a.Notifier.Pub = sns
	}

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	a.registerRoutes()

	return a, nil
}

func (a *API) registerRoutes() {
	router := a.Router

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 5 << 20

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
	})

	auth := middleware.NewBasicAuthMiddleware(a.DB, a.Argon)
	maxUploadSize := viper.GetInt64("upload.max_size")

	// GET /healthz			-> Checks if the database is reachable
	router.GET("/healthz", a.Healthz)

	user := router.Group("/user", middleware.BodySizeLimiter(1<<20))
	{
		// POST /user			-> Registers a new user
		user.POST("", middleware.NoQueryParams(), a.UserCreate)

		// GET /user/self		-> Returns the caller's account
		user.GET("/self", middleware.NoQueryParams(), auth, a.UserFetch)

		// PUT /user/self		-> Updates the caller's account
		user.PUT("/self", middleware.NoQueryParams(), auth, a.UserUpdate)

		// GET /user/self/verify	-> Consumes a verification token
		user.GET("/self/verify", a.UserVerify)
	}

	pic := router.Group("/user/self/pic", auth)
	{
		// POST /user/self/pic		-> Uploads the profile picture
		pic.POST("", middleware.BodySizeLimiter(maxUploadSize), a.PicUpload)

		// GET /user/self/pic		-> Returns the picture metadata
		pic.GET("", a.PicFetch)

		// DELETE /user/self/pic	-> Deletes the picture and its blob
		pic.DELETE("", a.PicDelete)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
