package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *jwt.Service {
	return jwt.NewService(api_models.Config{
		SecretKey:            "secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "test",
	})
}

func protectedRouter(m *AuthMiddleware) *gin.Engine {
	r := gin.New()
	r.GET("/read", m.Authenticate(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/write", m.Authenticate(), m.RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func do(r http.Handler, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	r := protectedRouter(NewAuthMiddleware(newJWT(), false, DefaultConfig()))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/read", ""))
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/write", ""))
}

func TestAuthEnabled(t *testing.T) {
	jwtService := newJWT()
	r := protectedRouter(NewAuthMiddleware(jwtService, true, DefaultConfig()))

	admin, err := jwtService.GenerateTokens("u1", auth_models.RoleAdmin)
	require.NoError(t, err)
	viewer, err := jwtService.GenerateTokens("u2", auth_models.RoleViewer)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", ""))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", "garbage"))
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/read", admin.RefreshToken))

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/read", viewer.AccessToken))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/write", viewer.AccessToken))
	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/write", admin.AccessToken))
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(zerolog.New(&buf))

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	id := w.Header().Get(RequestIDHeader)
	require.NotEmpty(t, id)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, id, line["request_id"])
	assert.Equal(t, "/missing?x=1", line["path"])
	assert.Equal(t, "warn", line["level"])
	assert.EqualValues(t, 404, line["status"])

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Header().Get(RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-referrer", w.Header().Get("Referrer-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
