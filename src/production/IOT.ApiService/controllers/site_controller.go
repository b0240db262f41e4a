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

// SiteController handles site requests
type SiteController struct {
	resource
	siteRepo  interfaces.SiteRepository
	orgRepo   interfaces.OrganizationRepository
	pointRepo interfaces.MeasuringPointRepository
}

func NewSiteController(
	siteRepo interfaces.SiteRepository,
	orgRepo interfaces.OrganizationRepository,
	pointRepo interfaces.MeasuringPointRepository,
	notifier events.Notifier,
	logger *logger.Logger,
	authMiddleware *middleware.AuthMiddleware,
) *SiteController {
	return &SiteController{
		resource:  newResource("sites", "Site", logger, notifier, authMiddleware),
		siteRepo:  siteRepo,
		orgRepo:   orgRepo,
		pointRepo: pointRepo,
	}
}

// RegisterRoutes registers the site routes with Gin
func (c *SiteController) RegisterRoutes(router *gin.Engine) {
	sites := router.Group("/api/sites")
	{
		sites.GET("", c.read(c.ListSites)...)
		sites.GET("/organization/:organizationId", c.read(c.ListSitesByOrganization)...)
		sites.GET("/:id", c.read(c.GetSite)...)

		sites.POST("", c.write(c.CreateSite)...)
		sites.PUT("/:id", c.write(c.UpdateSite)...)
		sites.DELETE("/:id", c.write(c.DeleteSite)...)
	}
}

type CreateSiteRequest struct {
	Name           string `json:"name" binding:"required,max=250"`
	Description    string `json:"description" binding:"omitempty,max=250"`
	Location       string `json:"location" binding:"omitempty,max=250"`
	OrganizationID string `json:"organizationId" binding:"required,objectid"`
}

type UpdateSiteRequest struct {
	Name           *string `json:"name" binding:"omitempty,min=1,max=250"`
	Description    *string `json:"description" binding:"omitempty,max=250"`
	Location       *string `json:"location" binding:"omitempty,max=250"`
	OrganizationID *string `json:"organizationId" binding:"omitempty,objectid"`
}

// ListSites returns every site
// @Summary List sites
// @Tags sites
// @Security BearerAuth
// @Produce json
// @Success 200 {array} asset_models.Site
// @Failure 500 {object} api_models.ErrorResponse
// @Router /api/sites [get]
func (c *SiteController) ListSites(ctx *gin.Context) {
	sites, err := c.siteRepo.List(ctx.Request.Context())
	if err != nil {
		c.fail(ctx, err, "Error getting sites")
		return
	}
	ctx.JSON(http.StatusOK, sites)
}

// ListSitesByOrganization returns the sites of one organization
// @Summary List sites of an organization
// @Tags sites
// @Security BearerAuth
// @Produce json
// @Param organizationId path string true "Organization ID"
// @Success 200 {array} asset_models.Site
// @Failure 400 {object} api_models.ErrorResponse
// @Router /api/sites/organization/{organizationId} [get]
func (c *SiteController) ListSitesByOrganization(ctx *gin.Context) {
	orgID, ok := parseID(ctx, "organizationId")
	if !ok {
		return
	}

	sites, err := c.siteRepo.ListByOrganization(ctx.Request.Context(), orgID)
	if err != nil {
		c.fail(ctx, err, "Error getting sites by organization")
		return
	}
	ctx.JSON(http.StatusOK, sites)
}

// GetSite returns one site with its organization and measuring points
// @Summary Get a site
// @Tags sites
// @Security BearerAuth
// @Produce json
// @Param id path string true "Site ID"
// @Success 200 {object} asset_models.SiteDetail
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sites/{id} [get]
func (c *SiteController) GetSite(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	rctx := ctx.Request.Context()

	site, err := c.siteRepo.Get(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting site")
		return
	}

	org, err := c.orgRepo.Get(rctx, site.OrganizationID)
	if err != nil && !isNotFound(err) {
		c.fail(ctx, err, "Error getting site")
		return
	}

	points, err := c.pointRepo.ListBySite(rctx, id)
	if err != nil {
		c.fail(ctx, err, "Error getting site")
		return
	}

	ctx.JSON(http.StatusOK, asset_models.SiteDetail{Site: *site, Organization: org, MeasuringPoints: points})
}

// CreateSite creates a site under an existing organization
// @Summary Create a site
// @Tags sites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param site body CreateSiteRequest true "Site"
// @Success 201 {object} asset_models.Site
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse "Organization not found"
// @Router /api/sites [post]
func (c *SiteController) CreateSite(ctx *gin.Context) {
	var req CreateSiteRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	orgID, err := parseBodyID(&req.OrganizationID)
	if err != nil {
		c.fail(ctx, err, "Error creating site")
		return
	}
	if !c.parentExists(ctx, *orgID, "Error creating site") {
		return
	}

	site := asset_models.Site{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		OrganizationID: *orgID,
	}
	if err := c.siteRepo.Create(ctx.Request.Context(), &site); err != nil {
		c.fail(ctx, err, "Error creating site")
		return
	}

	c.notify(ctx, events.ActionCreated, site.ID, site.OrganizationID)
	ctx.JSON(http.StatusCreated, site)
}

// UpdateSite changes the supplied fields of a site
// @Summary Update a site
// @Tags sites
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Site ID"
// @Param site body UpdateSiteRequest true "Fields to change"
// @Success 200 {object} asset_models.Site
// @Failure 400 {object} api_models.ValidationErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sites/{id} [put]
func (c *SiteController) UpdateSite(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	var req UpdateSiteRequest
	if !validation.BindJSON(ctx, &req) {
		return
	}

	orgID, err := parseBodyID(req.OrganizationID)
	if err != nil {
		c.fail(ctx, err, "Error updating site")
		return
	}
	if orgID != nil && !c.parentExists(ctx, *orgID, "Error updating site") {
		return
	}

	site, err := c.siteRepo.Update(ctx.Request.Context(), id, interfaces.SitePatch{
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		OrganizationID: orgID,
	})
	if err != nil {
		c.fail(ctx, err, "Error updating site")
		return
	}

	c.notify(ctx, events.ActionUpdated, site.ID, site.OrganizationID)
	ctx.JSON(http.StatusOK, site)
}

// DeleteSite removes a site, and with cascade=true everything below it
// @Summary Delete a site
// @Tags sites
// @Security BearerAuth
// @Produce json
// @Param id path string true "Site ID"
// @Param cascade query bool false "Also delete measuring points, boards and sensors"
// @Success 200 {object} api_models.DeleteResponse
// @Failure 400 {object} api_models.ErrorResponse
// @Failure 404 {object} api_models.ErrorResponse
// @Router /api/sites/{id} [delete]
func (c *SiteController) DeleteSite(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	cascade, ok := cascadeParam(ctx)
	if !ok {
		return
	}

	n, err := c.siteRepo.Delete(ctx.Request.Context(), id, cascade)
	if err != nil {
		c.fail(ctx, err, "Error deleting site")
		return
	}

	c.deleted(ctx, id, n, cascade)
}

func (c *SiteController) parentExists(ctx *gin.Context, orgID primitive.ObjectID, action string) bool {
	exists, err := c.orgRepo.Exists(ctx.Request.Context(), orgID)
	if err != nil {
		c.fail(ctx, err, action)
		return false
	}
	if !exists {
		parentMissing(ctx, "Organization")
		return false
	}
	return true
}
