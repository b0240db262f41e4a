package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
)

// MetaController answers the root endpoints
type MetaController struct{}

func NewMetaController() *MetaController {
	return &MetaController{}
}

// RegisterRoutes registers the root routes with Gin
func (c *MetaController) RegisterRoutes(router *gin.Engine) {
	router.GET("/", c.Root)
	router.GET("/api", c.APIRoot)
}

// Root returns a liveness message
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} api_models.MessageResponse
// @Router / [get]
func (c *MetaController) Root(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, api_models.MessageResponse{Message: "IoT asset registry API is running"})
}

// APIRoot returns a liveness message for the API prefix
// @Summary API banner
// @Tags meta
// @Produce json
// @Success 200 {object} api_models.MessageResponse
// @Router /api [get]
func (c *MetaController) APIRoot(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, api_models.MessageResponse{Message: "IoT asset registry API. See /swagger/index.html for the documentation"})
}
