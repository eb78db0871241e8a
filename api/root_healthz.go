package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Healthz reports whether the database is reachable. Load balancers poll
// it, so the response must never be cached
func (a *API) Healthz(c *gin.Context) {
	if c.Request.URL.RawQuery != "" || c.Request.ContentLength > 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	c.Header("Cache-Control", "no-cache")

	sqlDB, err := a.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}

	if err != nil {
		zap.L().Error("Health check failed", zap.Error(err))
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}
