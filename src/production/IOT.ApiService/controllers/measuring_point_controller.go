package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/validation"
	events "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Events"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MeasuringPointController handles measuring point requests
type MeasuringPointController struct {
	resource
	pointRepo interfaces.MeasuringPointRepository
	siteRepo  interfaces.SiteRepository
	boardRepo interfaces.BoardRepository
}

func NewMeasuringPointController(
	pointRepo interfaces.MeasuringPointRepository,
	siteRepo interfaces.SiteRepository,
	boardRepo interfaces.BoardRepository,
	notifier events.Notifier,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *MeasuringPointController {
	return &MeasuringPointController{
		resource:  newResource("measuring_points", "Measuring point", logger, notifier, authMiddleware),
		pointRepo: pointRepo,
		siteRepo:  siteRepo,
		boardRepo: boardRepo,
	}
}

// RegisterRoutes registers the measuring point routes with Gin
func (c *MeasuringPointController) RegisterRoutes(router *gin.Engine) {
	points := router.Group("/api/measuring-points")
	{
		points.GET("", c.read(c.ListMeasuringPoints)...)
		points.GET("/site/:siteId", c.read(c.ListMeasuringPointsBySite)...)
		points.GET("/:id", c.read(c.GetMeasuringPoint)...)

		points.POST("", c.write(c.CreateMeasuringPoint)...)
		points.PUT("/:id", c.write(c.UpdateMeasuringPoint)...)
		points.DELETE("/:id", c.write(c.DeleteMeasuringPoint)...)
	}
}

// CoordinatesRequest requires both halves of the position
type CoordinatesRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
}

func (r *CoordinatesRequest) model() *asset_models.Coordinates {
	if r == nil {
		return nil
	}
	return &asset_models.Coordinates{Latitude: *r.Latitude, Longitude: *r.Longitude}
}

type CreateMeasuringPointRequest struct {
	Name        string              `json:"name" binding:"required,max=250"`
	Description string              `json:"description" binding:"omitempty,max=250"`
	Coordinates *CoordinatesRequest `json:"coordinates"`
	SiteID      string              `json:"siteId" binding:"required,objectid"`
}

type UpdateMeasuringPointRequest struct {
	Name        *string             `json:"name" binding:"omitempty,min=1,max=250"`
	Description *string             `json:"description" binding:"omitempty,max=250"`
	Coordinates *CoordinatesRequest `json:"coordinates"`
	SiteID      *string             `json:"siteId" binding:"omitempty,objectid"`
}

// ListMeasuringPoints returns every measuring point
// @Summary List measuring points
// @Tags measuring-points
// @Security BearerAuth
// @Produce json
// @Success 200 {array} asset_models.MeasuringPoint
// @Failure 500 {object} api_models.ErrorResponse
// @Router /api/measuring-points [get]
func (c *MeasuringPointController) ListMeasuringPoints(ctx *gin.Context) {
	points, err := c.pointRepo.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "Error getting measuring points")
		return
	}
	ctx.JSON(http.StatusOK, points)
}

// ListMeasuringPointsBySite returns the measuring points of one site
// @Summary List measuring points of a site
// @Tags measuring-points
// @Security BearerAuth
// @Produce json
// @Param siteId path string true "Site ID"
// @Success 200 {array} asset_models.MeasuringPoint
// @Failure 400 {object} api_models.ErrorResponse
// @Router /api/measuring-points/site/{siteId} [get]
func (c *MeasuringPointController) ListMeasuringPointsBySite(ctx *gin.Context) {
	siteID, ok := parseID(ctx, "siteId")
	if !ok {
		return
	}

	points, err := c.pointRepo.ListBySite(ctx.Request.Context(), siteID)
	if err != nil {
		c.fail(ctx, err, "Error getting measuring points by site")
		return
	}
	ctx.JSON(http.StatusOK, points)
}

// GetMeasuringPoint returns one measuring point with its site and boards
// @Summary Get a measuring point
// @Tags measuring-points
// @Security BearerAuth
// @Produce json
// @Param id path string true "Measuring point ID"
// @Success 200 {object} asset_models.MeasuringPointDetail
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/measuring-points/{id} [get]
func (c *MeasuringPointController) GetMeasuringPoint(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()

	point, err := c.pointRepo.Get(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting measuring point")
		return
	}

	site, err := c.siteRepo.Get(rctx, point.SiteID)
	if err != nil && !isNotFound(err) {
		c.fail(ctx, err, "Error getting measuring point")
		return
	}

	boards, err := c.boardRepo.ListByMeasuringPoint(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting measuring point")
		return
	}

	ctx.JSON(http.StatusOK, asset_models.MeasuringPointDetail{MeasuringPoint: *point, Site: site, Boards: boards})
}

// CreateMeasuringPoint creates a measuring point under an existing site
// @Summary Create a measuring point
// @Tags measuring-points
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param measuringPoint body CreateMeasuringPointRequest true "Measuring point"
// @Success 201 {object} asset_models.MeasuringPoint
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse "Site not found"
// @Router /api/measuring-points [post]
func (c *MeasuringPointController) CreateMeasuringPoint(ctx *gin.Context) {
	var req CreateMeasuringPointRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	siteID, err := parseBodyID(&req.SiteID)
	if err != nil {
		c.fail(ctx, err, "Error creating measuring point")
		return
	}
	if !c.parentExists(ctx, *siteID, "Error creating measuring point") {
		return
	}

	point := asset_models.MeasuringPoint{
		Name:        req.Name,
		Description: req.Description,
		Coordinates: req.Coordinates.model(),
		SiteID:      *siteID,
	}
	if err := c.pointRepo.Create(ctx.Request.Context(), &point); err != nil {
		c.fail(ctx, err, "Error creating measuring point")
		return
	}

	c.notify(ctx, events.ActionCreated, point.ID, point.SiteID)
	ctx.JSON(http.StatusCreated, point)
}

// UpdateMeasuringPoint changes the supplied fields of a measuring point
// @Summary Update a measuring point
// @Tags measuring-points
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Measuring point ID"
// @Param measuringPoint body UpdateMeasuringPointRequest true "Fields to change"
// @Success 200 {object} asset_models.MeasuringPoint
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/measuring-points/{id} [put]
func (c *MeasuringPointController) UpdateMeasuringPoint(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateMeasuringPointRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	siteID, err := parseBodyID(req.SiteID)
	if err != nil {
		c.fail(ctx, err, "Error updating measuring point")
		return
	}
	if siteID != nil && !c.parentExists(ctx, *siteID, "Error updating measuring point") {
		return
	}

	point, err := c.pointRepo.Update(ctx.Request.Context(), id, interfaces.MeasuringPointPatch{
		Name:        req.Name,
		Description: req.Description,
		Coordinates: req.Coordinates.model(),
		SiteID:      siteID,
	})
	if err != nil {
		c.fail(ctx, err, "Error updating measuring point")
		return
	}

	c.notify(ctx, events.ActionUpdated, point.ID, point.SiteID)
	ctx.JSON(http.StatusOK, point)
}

// DeleteMeasuringPoint removes a measuring point, and with cascade=true its boards and sensors
// @Summary Delete a measuring point
// @Tags measuring-points
// @Security BearerAuth
// @Produce json
// @Param id path string true "Measuring point ID"
// @Param cascade query bool false "Also delete boards and sensors"
// @Success 200 {object} api_models.DeleteResponse
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/measuring-points/{id} [delete]
func (c *MeasuringPointController) DeleteMeasuringPoint(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	cascade, ok := cascadeParam(ctx)
	if !ok {
		return
	}

	n, err := c.pointRepo.Delete(ctx.Request.Context(), id, cascade)
	if err != nil {
		c.fail(ctx, err, "Error deleting measuring point")
		return
	}

	c.deleted(ctx, id, n, cascade)
}

func (c *MeasuringPointController) parentExists(ctx *gin.Context, siteID primitive.ObjectID, action string) bool {
	exists, err := c.siteRepo.Exists(ctx.Request.Context(), siteID)
	if err != nil {
		c.fail(ctx, err, action)
		return false
	}
	if !exists {
		parentMissing(ctx, "Site")
		return false
	}
	return true
}
