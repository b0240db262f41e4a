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

// BoardController handles board requests
type BoardController struct {
	resource
	boardRepo  interfaces.BoardRepository
	pointRepo  interfaces.MeasuringPointRepository
	sensorRepo interfaces.SensorRepository
}

func NewBoardController(
	boardRepo interfaces.BoardRepository,
	pointRepo interfaces.MeasuringPointRepository,
	sensorRepo interfaces.SensorRepository,
	notifier events.Notifier,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *BoardController {
	return &BoardController{
		resource:   newResource("boards", "Board", logger, notifier, authMiddleware),
		boardRepo:  boardRepo,
		pointRepo:  pointRepo,
		sensorRepo: sensorRepo,
	}
}

// RegisterRoutes registers the board routes with Gin
func (c *BoardController) RegisterRoutes(router *gin.Engine) {
	boards := router.Group("/api/boards")
	{
		boards.GET("", c.read(c.ListBoards)...)
		boards.GET("/measuring-point/:measuringPointId", c.read(c.ListBoardsByMeasuringPoint)...)
		boards.GET("/:id", c.read(c.GetBoard)...)

		boards.POST("", c.write(c.CreateBoard)...)
		boards.PUT("/:id", c.write(c.UpdateBoard)...)
		boards.DELETE("/:id", c.write(c.DeleteBoard)...)
	}
}

type CreateBoardRequest struct {
	Name             string               `json:"name" binding:"required,max=250"`
	SerialNumber     string               `json:"serialNumber" binding:"omitempty,max=250"`
	FirmwareVersion  string               `json:"firmwareVersion" binding:"omitempty,max=250"`
	Description      string               `json:"description" binding:"omitempty,max=250"`
	Status           *asset_models.Status `json:"status" binding:"omitempty,status"`
	MeasuringPointID string               `json:"measuringPointId" binding:"required,objectid"`
}

type UpdateBoardRequest struct {
	Name             *string              `json:"name" binding:"omitempty,min=1,max=250"`
	SerialNumber     *string              `json:"serialNumber" binding:"omitempty,max=250"`
	FirmwareVersion  *string              `json:"firmwareVersion" binding:"omitempty,max=250"`
	Description      *string              `json:"description" binding:"omitempty,max=250"`
	Status           *asset_models.Status `json:"status" binding:"omitempty,status"`
	MeasuringPointID *string              `json:"measuringPointId" binding:"omitempty,objectid"`
}

// ListBoards returns every board
// @Summary List boards
// @Tags boards
// @Security BearerAuth
// @Produce json
// @Success 200 {array} asset_models.Board
// @Failure 500 {object} api_models.ErrorResponse
// @Router /api/boards [get]
func (c *BoardController) ListBoards(ctx *gin.Context) {
	boards, err := c.boardRepo.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "Error getting boards")
		return
	}
	ctx.JSON(http.StatusOK, boards)
}

// ListBoardsByMeasuringPoint returns the boards of one measuring point
// @Summary List boards of a measuring point
// @Tags boards
// @Security BearerAuth
// @Produce json
// @Param measuringPointId path string true "Measuring point ID"
// @Success 200 {array} asset_models.Board
// @Failure 400 {object} api_models.ErrorResponse
// @Router /api/boards/measuring-point/{measuringPointId} [get]
func (c *BoardController) ListBoardsByMeasuringPoint(ctx *gin.Context) {
	pointID, ok := parseID(ctx, "measuringPointId")
	if !ok {
		return
	}

	boards, err := c.boardRepo.ListByMeasuringPoint(ctx.Request.Context(), pointID)
	if err != nil {
		c.fail(ctx, err, "Error getting boards by measuring point")
		return
	}
	ctx.JSON(http.StatusOK, boards)
}

// GetBoard returns one board with its measuring point and sensors
// @Summary Get a board
// @Tags boards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Success 200 {object} asset_models.BoardDetail
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/boards/{id} [get]
func (c *BoardController) GetBoard(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()

	board, err := c.boardRepo.Get(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting board")
		return
	}

	point, err := c.pointRepo.Get(rctx, board.MeasuringPointID)
	if err != nil && !isNotFound(err) {
		c.fail(ctx, err, "Error getting board")
		return
	}

	sensors, err := c.sensorRepo.ListByBoard(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting board")
		return
	}

	ctx.JSON(http.StatusOK, asset_models.BoardDetail{Board: *board, MeasuringPoint: point, Sensors: sensors})
}

// CreateBoard creates a board under an existing measuring point
// @Summary Create a board
// @Tags boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param board body CreateBoardRequest true "Board"
// @Success 201 {object} asset_models.Board
// @Failure 400 {object} api_models.ValidationErrorResponse "Validation failed or serial number already used"
// @Failure 404 {object} api_models.ErrorResponse "Measuring point not found"
// @Router /api/boards [post]
func (c *BoardController) CreateBoard(ctx *gin.Context) {
	var req CreateBoardRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	pointID, err := parseBodyID(&req.MeasuringPointID)
	if err != nil {
		c.fail(ctx, err, "Error creating board")
		return
	}
	if !c.parentExists(ctx, *pointID, "Error creating board") {
		return
	}

	status := asset_models.StatusActive
	if req.Status != nil {
		status = *req.Status
	}

	board := asset_models.Board{
		Name:             req.Name,
		SerialNumber:     req.SerialNumber,
		FirmwareVersion:  req.FirmwareVersion,
		Description:      req.Description,
		Status:           status,
		MeasuringPointID: *pointID,
	}
	if err := c.boardRepo.Create(ctx.Request.Context(), &board); err != nil {
		c.fail(ctx, err, "Error creating board")
		return
	}

	c.notify(ctx, events.ActionCreated, board.ID, board.MeasuringPointID)
	ctx.JSON(http.StatusCreated, board)
}

// UpdateBoard changes the supplied fields of a board
// @Summary Update a board
// @Tags boards
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Board ID"
// @Param board body UpdateBoardRequest true "Fields to change"
// @Success 200 {object} asset_models.Board
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/boards/{id} [put]
func (c *BoardController) UpdateBoard(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateBoardRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	pointID, err := parseBodyID(req.MeasuringPointID)
	if err != nil {
		c.fail(ctx, err, "Error updating board")
		return
	}
	if pointID != nil && !c.parentExists(ctx, *pointID, "Error updating board") {
		return
	}

	board, err := c.boardRepo.Update(ctx.Request.Context(), id, interfaces.BoardPatch{
		Name:             req.Name,
		SerialNumber:     req.SerialNumber,
		FirmwareVersion:  req.FirmwareVersion,
		Description:      req.Description,
		Status:           req.Status,
		MeasuringPointID: pointID,
	})
	if err != nil {
		c.fail(ctx, err, "Error updating board")
		return
	}

	c.notify(ctx, events.ActionUpdated, board.ID, board.MeasuringPointID)
	ctx.JSON(http.StatusOK, board)
}

// DeleteBoard removes a board, and with cascade=true its sensors
// @Summary Delete a board
// @Tags boards
// @Security BearerAuth
// @Produce json
// @Param id path string true "Board ID"
// @Param cascade query bool false "Also delete sensors"
// @Success 200 {object} api_models.DeleteResponse
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/boards/{id} [delete]
func (c *BoardController) DeleteBoard(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	cascade, ok := cascadeParam(ctx)
	if !ok {
		return
	}

	n, err := c.boardRepo.Delete(ctx.Request.Context(), id, cascade)
	if err != nil {
		c.fail(ctx, err, "Error deleting board")
		return
	}

	c.deleted(ctx, id, n, cascade)
}

func (c *BoardController) parentExists(ctx *gin.Context, pointID primitive.ObjectID, action string) bool {
	exists, err := c.pointRepo.Exists(ctx.Request.Context(), pointID)
	if err != nil {
		c.fail(ctx, err, action)
		return false
	}
	if !exists {
		parentMissing(ctx, "Measuring point")
		return false
	}
	return true
}
