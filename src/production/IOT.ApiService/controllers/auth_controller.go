package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	service "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/auth"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/validation"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
)

const refreshCookie = "refresh_token"

// AuthController handles authentication requests
type AuthController struct {
	authService    *service.AuthService
	authMiddleware *middleware.AuthMiddleware
	logger         *logger.Logger
	secureCookies  bool
}

func NewAuthController(authService *service.AuthService, authMiddleware *middleware.AuthMiddleware, logger *logger.Logger, secureCookies bool) *AuthController {
	return &AuthController{
		authService:    authService,
		authMiddleware: authMiddleware,
		logger:         logger.WithComponent("auth"),
		secureCookies:  secureCookies,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.RefreshTokens)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.authMiddleware.Authenticate(), h.Profile)
	}
}

// Login handles user login
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body service.LoginRequest true "Credentials"
// @Success 200 {object} service.AuthResponse
// @Failure 401 {object} api_models.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthController) Login(c *gin.Context) {
	var req service.LoginRequest
	if !validation.BindJSON(c, &req) {
		return
	}

	response, tokenPair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	h.setRefreshCookie(c, tokenPair)
	c.JSON(http.StatusOK, response)
}

// RefreshTokens exchanges a refresh token, from the cookie or the body, for a new pair
// @Summary Refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param body body service.RefreshRequest false "Refresh token when no cookie is sent"
// @Success 200 {object} service.RefreshTokenResponse
// @Failure 401 {object} api_models.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthController) RefreshTokens(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookie)
	if err != nil || refreshToken == "" {
		var req service.RefreshRequest
		if c.Request.ContentLength != 0 {
			_ = c.ShouldBindJSON(&req)
		}
		refreshToken = req.RefreshToken
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "refresh token not found"})
		return
	}

	response, tokenPair, err := h.authService.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		h.unauthorized(c, err)
		return
	}

	h.setRefreshCookie(c, tokenPair)
	c.JSON(http.StatusOK, response)
}

// Logout clears the refresh cookie
// @Summary Log out
// @Tags auth
// @Produce json
// @Success 200 {object} api_models.MessageResponse
// @Router /api/auth/logout [post]
func (h *AuthController) Logout(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, api_models.MessageResponse{Message: "Logged out successfully"})
}

// Profile returns the authenticated user
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} auth_models.User
// @Failure 401 {object} api_models.ErrorResponse
// @Router /api/auth/me [get]
func (h *AuthController) Profile(c *gin.Context) {
	userID, err := middleware.GetUserFromGinContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "authentication required"})
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) || errors.Is(err, interfaces.ErrInvalidID) {
			c.JSON(http.StatusNotFound, api_models.ErrorResponse{Error: "User not found"})
			return
		}
		h.logger.ErrorWithError(err, "Error getting user profile")
		c.JSON(http.StatusInternalServerError, api_models.ErrorResponse{Error: "Error getting user profile"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *AuthController) setRefreshCookie(c *gin.Context, pair *api_models.TokenPair) {
	maxAge := int(time.Until(time.Unix(pair.RefreshExpiresAt, 0)).Seconds())
	c.SetCookie(refreshCookie, pair.RefreshToken, maxAge, "/api/auth", "", h.secureCookies, true)
}

// unauthorized hides which part of the credentials was wrong. Store
// failures are logged and reported as 500.
func (h *AuthController) unauthorized(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInactiveUser):
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "user is disabled"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "invalid credentials"})
	case errors.Is(err, interfaces.ErrNotFound), errors.Is(err, interfaces.ErrInvalidID):
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "user not found"})
	case errors.Is(err, jwt.ErrInvalidToken), errors.Is(err, jwt.ErrWrongType):
		c.JSON(http.StatusUnauthorized, api_models.ErrorResponse{Error: "invalid refresh token"})
	default:
		h.logger.ErrorWithError(err, "Authentication failed")
		c.JSON(http.StatusInternalServerError, api_models.ErrorResponse{Error: "authentication failed"})
	}
}
