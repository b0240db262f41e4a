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

// OrganizationController handles organization requests
type OrganizationController struct {
	resource
	orgRepo  interfaces.OrganizationRepository
	siteRepo interfaces.SiteRepository
}

func NewOrganizationController(
	orgRepo interfaces.OrganizationRepository,
	siteRepo interfaces.SiteRepository,
	notifier events.Notifier,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *OrganizationController {
	return &OrganizationController{
		resource: newResource("organizations", "Organization", logger, notifier, authMiddleware),
		orgRepo:  orgRepo,
		siteRepo: siteRepo,
	}
}

// RegisterRoutes registers the organization routes with Gin
func (c *OrganizationController) RegisterRoutes(router *gin.Engine) {
	orgs := router.Group("/api/organizations")
	{
		orgs.GET("", c.read(c.ListOrganizations)...)
		orgs.GET("/:id", c.read(c.GetOrganization)...)

		orgs.POST("", c.write(c.CreateOrganization)...)
		orgs.PUT("/:id", c.write(c.UpdateOrganization)...)
		orgs.DELETE("/:id", c.write(c.DeleteOrganization)...)
	}
}

type CreateOrganizationRequest struct {
	Name        string `json:"name" binding:"required,max=250"`
	Country     string `json:"country" binding:"omitempty,max=100"`
	State       string `json:"state" binding:"omitempty,max=100"`
	City        string `json:"city" binding:"omitempty,max=100"`
	Address     string `json:"address" binding:"omitempty,max=100"`
	Zipcode     string `json:"zipcode" binding:"omitempty,zipcode"`
	Description string `json:"description" binding:"omitempty,max=250"`
}

type UpdateOrganizationRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=250"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	State       *string `json:"state" binding:"omitempty,max=100"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Address     *string `json:"address" binding:"omitempty,max=100"`
	Zipcode     *string `json:"zipcode" binding:"omitempty,zipcode"`
	Description *string `json:"description" binding:"omitempty,max=250"`
}

// ListOrganizations returns every organization
// @Summary List organizations
// @Tags organizations
// @Security BearerAuth
// @Produce json
// @Success 200 {array} asset_models.Organization
// @Failure 500 {object} api_models.ErrorResponse
// @Router /api/organizations [get]
func (c *OrganizationController) ListOrganizations(ctx *gin.Context) {
	orgs, err := c.orgRepo.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "Error getting organizations")
		return
	}
	ctx.JSON(http.StatusOK, orgs)
}

// GetOrganization returns one organization with its sites
// @Summary Get an organization
// @Tags organizations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} asset_models.OrganizationDetail
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/organizations/{id} [get]
func (c *OrganizationController) GetOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	org, err := c.orgRepo.Get(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err, "Error getting organization")
		return
	}

	sites, err := c.siteRepo.ListByOrganization(ctx.Request.Context(), id)
	if err != nil {
		c.fail(ctx, err, "Error getting organization")
		return
	}

	ctx.JSON(http.StatusOK, asset_models.OrganizationDetail{Organization: *org, Sites: sites})
}

// CreateOrganization creates an organization
// @Summary Create an organization
// @Tags organizations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param organization body CreateOrganizationRequest true "Organization"
// @Success 201 {object} asset_models.Organization
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Router /api/organizations [post]
func (c *OrganizationController) CreateOrganization(ctx *gin.Context) {
	var req CreateOrganizationRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	org := asset_models.Organization{
		Name:        req.Name,
		Country:     req.Country,
		State:       req.State,
		City:        req.City,
		Address:     req.Address,
		Zipcode:     req.Zipcode,
		Description: req.Description,
	}
	if err := c.orgRepo.Create(ctx.Request.Context(), &org); err != nil {
		c.fail(ctx, err, "Error creating organization")
		return
	}

	c.notify(ctx, events.ActionCreated, org.ID, primitive.NilObjectID)
	ctx.JSON(http.StatusCreated, org)
}

// UpdateOrganization changes the supplied fields of an organization
// @Summary Update an organization
// @Tags organizations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Organization ID"
// @Param organization body UpdateOrganizationRequest true "Fields to change"
// @Success 200 {object} asset_models.Organization
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/organizations/{id} [put]
func (c *OrganizationController) UpdateOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateOrganizationRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	org, err := c.orgRepo.Update(ctx.Request.Context(), id, interfaces.OrganizationPatch{
		Name:        req.Name,
		Country:     req.Country,
		State:       req.State,
		City:        req.City,
		Address:     req.Address,
		Zipcode:     req.Zipcode,
		Description: req.Description,
	})
	if err != nil {
		c.fail(ctx, err, "Error updating organization")
		return
	}

	c.notify(ctx, events.ActionUpdated, org.ID, primitive.NilObjectID)
	ctx.JSON(http.StatusOK, org)
}

// DeleteOrganization removes an organization, and with cascade=true everything below it
// @Summary Delete an organization
// @Tags organizations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Organization ID"
// @Param cascade query bool false "Also delete sites, measuring points, boards and sensors"
// @Success 200 {object} api_models.DeleteResponse
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/organizations/{id} [delete]
func (c *OrganizationController) DeleteOrganization(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	cascade, ok := cascadeParam(ctx)
	if !ok {
		return
	}

	n, err := c.orgRepo.Delete(ctx.Request.Context(), id, cascade)
	if err != nil {
		c.fail(ctx, err, "Error deleting organization")
		return
	}

	c.deleted(ctx, id, n, cascade)
}
