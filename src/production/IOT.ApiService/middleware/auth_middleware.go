package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
)

// Key types for request context
type contextKey string

const (
	UserIDContextKey   contextKey = "user_id"
	UserRoleContextKey contextKey = "user_role"
	TokenIDContextKey  contextKey = "token_id"
)

// AuthMiddleware verifies bearer tokens. When disabled every handler it
// returns is a pass-through so routes can be registered the same way.
type AuthMiddleware struct {
	jwtService *jwt.Service
	enabled    bool
	config     Config
}

// Config holds middleware configuration
type Config struct {
	AccessTokenHeader string
	AccessTokenCookie string
}

// DefaultConfig returns a default middleware configuration
func DefaultConfig() Config {
	return Config{
		AccessTokenHeader: "Authorization",
		AccessTokenCookie: "access_token",
	}
}

func NewAuthMiddleware(jwtService *jwt.Service, enabled bool, config Config) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		enabled:    enabled,
		config:     config,
	}
}

// Enabled reports whether tokens are checked
func (m *AuthMiddleware) Enabled() bool {
	return m.enabled
}

// extractToken gets a token from either header or cookie
func extractToken(r *http.Request, headerName, cookieName string) string {
	token := r.Header.Get(headerName)
	if token != "" {
		if strings.HasPrefix(token, "Bearer ") {
			return strings.TrimPrefix(token, "Bearer ")
		}
		return token
	}

	if cookieName != "" {
		cookie, err := r.Cookie(cookieName)
		if err == nil {
			return cookie.Value
		}
	}

	return ""
}

// Authenticate middleware verifies the access token
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		accessToken := extractToken(c.Request, m.config.AccessTokenHeader, m.config.AccessTokenCookie)
		if accessToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		accessClaims, err := m.jwtService.ValidateAccessToken(accessToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(string(UserIDContextKey), accessClaims.UserID)
		c.Set(string(UserRoleContextKey), accessClaims.Role)
		c.Set(string(TokenIDContextKey), accessClaims.TokenID)

		c.Next()
	}
}

// RequireAdmin ensures the authenticated user has the admin role.
// It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.RequireRole(auth_models.RoleAdmin)
}

// RequireRole ensures the authenticated user has a specific role
func (m *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.enabled {
			c.Next()
			return
		}

		userRole, err := GetRoleFromGinContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if userRole != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		c.Next()
	}
}

// GetUserFromGinContext retrieves user ID from Gin context
func GetUserFromGinContext(c *gin.Context) (string, error) {
	userIDVal, exists := c.Get(string(UserIDContextKey))
	if !exists {
		return "", errors.New("user not found in context")
	}

	userID, ok := userIDVal.(string)
	if !ok {
		return "", errors.New("invalid user ID format in context")
	}

	return userID, nil
}

// GetRoleFromGinContext retrieves user role from Gin context
func GetRoleFromGinContext(c *gin.Context) (string, error) {
	roleVal, exists := c.Get(string(UserRoleContextKey))
	if !exists {
		return "", errors.New("role not found in context")
	}

	role, ok := roleVal.(string)
	if !ok {
		return "", errors.New("invalid role format in context")
	}

	return role, nil
}
