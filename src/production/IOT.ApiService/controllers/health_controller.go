package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/health"
)

// HealthController serves the liveness and readiness checks
type HealthController struct {
	checker *health.HealthChecker
}

func NewHealthController(checker *health.HealthChecker) *HealthController {
	return &HealthController{checker: checker}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

// HealthLive reports that the process is up
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HealthReady checks the database and the optional broker
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} health.Report
// @Failure 503 {object} health.Report
// @Router /health/ready [get]
func (c *HealthController) HealthReady(ctx *gin.Context) {
	report, ready := c.checker.GetHealthStatus(ctx.Request.Context())
	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, report)
		return
	}
	ctx.JSON(http.StatusOK, report)
}
