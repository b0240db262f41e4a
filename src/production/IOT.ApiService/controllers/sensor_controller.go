package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/validation"
	events "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Events"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SensorController handles sensor requests
type SensorController struct {
	resource
	sensorRepo interfaces.SensorRepository
	boardRepo  interfaces.BoardRepository
}

func NewSensorController(
	sensorRepo interfaces.SensorRepository,
	boardRepo interfaces.BoardRepository,
	notifier events.Notifier,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *SensorController {
	return &SensorController{
		resource:   newResource("sensors", "Sensor", logger, notifier, authMiddleware),
		sensorRepo: sensorRepo,
		boardRepo:  boardRepo,
	}
}

// RegisterRoutes registers the sensor routes with Gin
func (c *SensorController) RegisterRoutes(router *gin.Engine) {
	sensors := router.Group("/api/sensors")
	{
		sensors.GET("", c.read(c.ListSensors)...)
		sensors.GET("/types", c.read(c.ListSensorTypes)...)
		sensors.GET("/board/:boardId", c.read(c.ListSensorsByBoard)...)
		sensors.GET("/:id", c.read(c.GetSensor)...)

		sensors.POST("", c.write(c.CreateSensor)...)
		sensors.PUT("/:id", c.write(c.UpdateSensor)...)
		sensors.DELETE("/:id", c.write(c.DeleteSensor)...)
	}
}

type CreateSensorRequest struct {
	Name        string                  `json:"name" binding:"required,max=250"`
	Type        asset_models.SensorType `json:"type" binding:"required,sensortype"`
	Unit        string                  `json:"unit" binding:"omitempty,max=250"`
	MinValue    *float64                `json:"minValue"`
	MaxValue    *float64                `json:"maxValue"`
	Description string                  `json:"description" binding:"omitempty,max=250"`
	Status      *asset_models.Status    `json:"status" binding:"omitempty,status"`
	BoardID     string                  `json:"boardId" binding:"required,objectid"`
}

type UpdateSensorRequest struct {
	Name        *string                  `json:"name" binding:"omitempty,min=1,max=250"`
	Type        *asset_models.SensorType `json:"type" binding:"omitempty,sensortype"`
	Unit        *string                  `json:"unit" binding:"omitempty,max=250"`
	MinValue    *float64                 `json:"minValue"`
	MaxValue    *float64                 `json:"maxValue"`
	Description *string                  `json:"description" binding:"omitempty,max=250"`
	Status      *asset_models.Status     `json:"status" binding:"omitempty,status"`
	BoardID     *string                  `json:"boardId" binding:"omitempty,objectid"`
}

// ListSensors returns every sensor
// @Summary List sensors
// @Tags sensors
// @Security BearerAuth
// @Produce json
// @Success 200 {array} asset_models.Sensor
// @Failure 500 {object} api_models.ErrorResponse
// @Router /api/sensors [get]
func (c *SensorController) ListSensors(ctx *gin.Context) {
	sensors, err := c.sensorRepo.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "Error getting sensors")
		return
	}
	ctx.JSON(http.StatusOK, sensors)
}

// ListSensorTypes returns the supported sensor types
// @Summary List sensor types
// @Tags sensors
// @Security BearerAuth
// @Produce json
// @Success 200 {array} string
// @Router /api/sensors/types [get]
func (c *SensorController) ListSensorTypes(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, asset_models.SensorTypes())
}

// ListSensorsByBoard returns the sensors of one board
// @Summary List sensors of a board
// @Tags sensors
// @Security BearerAuth
// @Produce json
// @Param boardId path string true "Board ID"
// @Success 200 {array} asset_models.Sensor
// @Failure 400 {object} api_models.ErrorResponse
// @Router /api/sensors/board/{boardId} [get]
func (c *SensorController) ListSensorsByBoard(ctx *gin.Context) {
	boardID, ok := parseID(ctx, "boardId")
	if !ok {
		return
	}

	sensors, err := c.sensorRepo.ListByBoard(ctx.Request.Context(), boardID)
	if err != nil {
		c.fail(ctx, err, "Error getting sensors by board")
		return
	}
	ctx.JSON(http.StatusOK, sensors)
}

// GetSensor returns one sensor with its board
// @Summary Get a sensor
// @Tags sensors
// @Security BearerAuth
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} asset_models.SensorDetail
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sensors/{id} [get]
func (c *SensorController) GetSensor(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()

	sensor, err := c.sensorRepo.Get(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting sensor")
		return
	}

	board, err := c.boardRepo.Get(rctx, sensor.BoardID)
	if err != nil && !isNotFound(err) {
		c.fail(ctx, err, "Error getting sensor")
		return
	}

	ctx.JSON(http.StatusOK, asset_models.SensorDetail{Sensor: *sensor, Board: board})
}

// CreateSensor creates a sensor on an existing board
// @Summary Create a sensor
// @Tags sensors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param sensor body CreateSensorRequest true "Sensor"
// @Success 201 {object} asset_models.Sensor
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse "Board not found"
// @Router /api/sensors [post]
func (c *SensorController) CreateSensor(ctx *gin.Context) {
	var req CreateSensorRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	status := asset_models.StatusActive
	if req.Status != nil {
		status = *req.Status
	}

	sensor := asset_models.Sensor{
		Name:        req.Name,
		Type:        req.Type,
		Unit:        req.Unit,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		Description: req.Description,
		Status:      status,
	}
	if !sensor.RangeValid() {
		rangeInvalid(ctx)
		return
	}

	boardID, err := parseBodyID(&req.BoardID)
	if err != nil {
		c.fail(ctx, err, "Error creating sensor")
		return
	}
	if !c.parentExists(ctx, *boardID, "Error creating sensor") {
		return
	}
	sensor.BoardID = *boardID

	if err := c.sensorRepo.Create(ctx.Request.Context(), &sensor); err != nil {
		c.fail(ctx, err, "Error creating sensor")
		return
	}

	c.notify(ctx, events.ActionCreated, sensor.ID, sensor.BoardID)
	ctx.JSON(http.StatusCreated, sensor)
}

// UpdateSensor changes the supplied fields of a sensor. The range rule is
// checked against the stored values merged with the supplied ones.
// @Summary Update a sensor
// @Tags sensors
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Sensor ID"
// @Param sensor body UpdateSensorRequest true "Fields to change"
// @Success 200 {object} asset_models.Sensor
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sensors/{id} [put]
func (c *SensorController) UpdateSensor(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateSensorRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	if req.MinValue != nil || req.MaxValue != nil {
		current, err := c.sensorRepo.Get(ctx.Request.Context(), id)
		if err != nil {
			c.fail(ctx, err, "Error updating sensor")
			return
		}
		merged := asset_models.Sensor{MinValue: current.MinValue, MaxValue: current.MaxValue}
		if req.MinValue != nil {
			merged.MinValue = req.MinValue
		}
		if req.MaxValue != nil {
			merged.MaxValue = req.MaxValue
		}
		if !merged.RangeValid() {
			rangeInvalid(ctx)
			return
		}
	}

	boardID, err := parseBodyID(req.BoardID)
	if err != nil {
		c.fail(ctx, err, "Error updating sensor")
		return
	}
	if boardID != nil && !c.parentExists(ctx, *boardID, "Error updating sensor") {
		return
	}

	sensor, err := c.sensorRepo.Update(ctx.Request.Context(), id, interfaces.SensorPatch{
		Name:        req.Name,
		Type:        req.Type,
		Unit:        req.Unit,
		MinValue:    req.MinValue,
		MaxValue:    req.MaxValue,
		Description: req.Description,
		Status:      req.Status,
		BoardID:     boardID,
	})
	if err != nil {
		c.fail(ctx, err, "Error updating sensor")
		return
	}

	c.notify(ctx, events.ActionUpdated, sensor.ID, sensor.BoardID)
	ctx.JSON(http.StatusOK, sensor)
}

// DeleteSensor removes a sensor
// @Summary Delete a sensor
// @Tags sensors
// @Security BearerAuth
// @Produce json
// @Param id path string true "Sensor ID"
// @Success 200 {object} api_models.DeleteResponse
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sensors/{id} [delete]
func (c *SensorController) DeleteSensor(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	n, err := c.sensorRepo.Delete(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err, "Error deleting sensor")
		return
	}

	c.deleted(ctx, id, n, false)
}

func (c *SensorController) parentExists(ctx *gin.Context, boardID primitive.ObjectID, action string) bool {
	exists, err := c.boardRepo.Exists(ctx.Request.Context(), boardID)
	if err != nil {
		c.fail(ctx, err, action)
		return false
	}
	if !exists {
		parentMissing(ctx, "Board")
		return false
	}
	return true
}

func rangeInvalid(ctx *gin.Context) {
	ctx.JSON(http.StatusBadRequest, api_models.ValidationErrorResponse{
		Error: "validation failed",
		Errors: []api_models.FieldError{
			{Field: "maxValue", Message: "maxValue must be greater than minValue"},
		},
	})
}
