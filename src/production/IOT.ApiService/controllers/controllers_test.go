package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/health"
	service "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/auth"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/middleware"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/validation"
	events "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Events"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/memory"
)

const missingID = "64b7f0000000000000000000"

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []events.Change
}

func (n *recordingNotifier) Notify(_ context.Context, change events.Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) Close() {}

func (n *recordingNotifier) last() events.Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.changes[len(n.changes)-1]
}

type testAPI struct {
	router   *gin.Engine
	store    *memory.Store
	notifier *recordingNotifier
}

func newTestAPI(t *testing.T, auth *middleware.AuthMiddleware) *testAPI {
	t.Helper()
	if auth == nil {
		auth = middleware.NewAuthMiddleware(nil, false, middleware.DefaultConfig())
	}
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	log := logger.NewNop()
	router := gin.New()

	orgs, sites, points, boards, sensors := store.Organizations(), store.Sites(), store.MeasuringPoints(), store.Boards(), store.Sensors()
	NewOrganizationController(orgs, sites, notifier, log, auth).RegisterRoutes(router)
	NewSiteController(sites, orgs, points, notifier, log, auth).RegisterRoutes(router)
	NewMeasuringPointController(points, sites, boards, notifier, log, auth).RegisterRoutes(router)
	NewBoardController(boards, points, sensors, notifier, log, auth).RegisterRoutes(router)
	NewSensorController(sensors, boards, notifier, log, auth).RegisterRoutes(router)
	NewMetaController().RegisterRoutes(router)

	return &testAPI{router: router, store: store, notifier: notifier}
}

func (a *testAPI) send(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// create posts body and returns the new id, failing the test on anything but 201
func (a *testAPI) create(t *testing.T, path string, body interface{}) string {
	t.Helper()
	w := a.send(t, http.MethodPost, path, body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)["id"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type hierarchy struct {
	org, site, point, board, sensor string
}

func (a *testAPI) seed(t *testing.T) hierarchy {
	t.Helper()
	var h hierarchy
	h.org = a.create(t, "/api/organizations", gin.H{"name": "Acme", "country": "CH", "zipcode": "80010"})
	h.site = a.create(t, "/api/sites", gin.H{"name": "Plant", "organizationId": h.org})
	h.point = a.create(t, "/api/measuring-points", gin.H{
		"name":        "Tank 1",
		"siteId":      h.site,
		"coordinates": gin.H{"latitude": 47.37, "longitude": 8.54},
	})
	h.board = a.create(t, "/api/boards", gin.H{"name": "B-1", "serialNumber": "SN-1", "measuringPointId": h.point})
	h.sensor = a.create(t, "/api/sensors", gin.H{"name": "Temp", "type": "TEMPERATURE", "minValue": -10, "maxValue": 50, "boardId": h.board})
	return h
}

func TestRootEndpoints(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{"/", "/api"} {
		w := api.send(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decode(t, w)["message"])
	}
}

func TestCreateValidation(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		name  string
		path  string
		body  interface{}
		field string
	}{
		{"missing name", "/api/organizations", gin.H{"country": "CH"}, "name"},
		{"short zipcode", "/api/organizations", gin.H{"name": "Acme", "zipcode": "12"}, "zipcode"},
		{"four character zipcode", "/api/organizations", gin.H{"name": "Acme", "zipcode": "8001"}, "zipcode"},
		{"long zipcode", "/api/organizations", gin.H{"name": "Acme", "zipcode": "12345678901"}, "zipcode"},
		{"bad parent id", "/api/sites", gin.H{"name": "Plant", "organizationId": "nope"}, "organizationId"},
		{"latitude out of range", "/api/measuring-points", gin.H{
			"name": "P", "siteId": missingID, "coordinates": gin.H{"latitude": 91, "longitude": 0},
		}, "coordinates.latitude"},
		{"bad status", "/api/boards", gin.H{"name": "B", "status": "broken", "measuringPointId": missingID}, "status"},
		{"bad sensor type", "/api/sensors", gin.H{"name": "S", "type": "temperature", "boardId": missingID}, "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.send(t, http.MethodPost, tt.path, tt.body, "")
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var body api_models.ValidationErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "validation failed", body.Error)
			require.NotEmpty(t, body.Errors)
			assert.Equal(t, tt.field, body.Errors[0].Field)
		})
	}
}

func TestCreateWithMissingParent(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		path string
		body interface{}
		want string
	}{
		{"/api/sites", gin.H{"name": "Plant", "organizationId": missingID}, "Organization not found"},
		{"/api/measuring-points", gin.H{"name": "P", "siteId": missingID}, "Site not found"},
		{"/api/boards", gin.H{"name": "B", "measuringPointId": missingID}, "Measuring point not found"},
		{"/api/sensors", gin.H{"name": "S", "type": "PH", "boardId": missingID}, "Board not found"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := api.send(t, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["error"])
		})
	}
}

func TestGetEmbedsParentAndChildren(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)
	require.Len(t, api.notifier.changes, 5)

	w := api.send(t, http.MethodGet, "/api/organizations/"+h.org, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	org := decode(t, w)
	assert.Equal(t, "Acme", org["name"])
	assert.Len(t, org["sites"], 1)

	w = api.send(t, http.MethodGet, "/api/sites/"+h.site, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	site := decode(t, w)
	assert.Equal(t, h.org, site["organization"].(map[string]interface{})["id"])
	assert.Len(t, site["measuringPoints"], 1)

	w = api.send(t, http.MethodGet, "/api/measuring-points/"+h.point, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	point := decode(t, w)
	assert.Equal(t, 47.37, point["coordinates"].(map[string]interface{})["latitude"])
	assert.Equal(t, h.site, point["site"].(map[string]interface{})["id"])
	assert.Len(t, point["boards"], 1)

	w = api.send(t, http.MethodGet, "/api/boards/"+h.board, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	board := decode(t, w)
	assert.Equal(t, "active", board["status"])
	assert.Equal(t, h.point, board["measuringPoint"].(map[string]interface{})["id"])
	assert.Len(t, board["sensors"], 1)

	w = api.send(t, http.MethodGet, "/api/sensors/"+h.sensor, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	sensor := decode(t, w)
	assert.Equal(t, "TEMPERATURE", sensor["type"])
	assert.Equal(t, 50.0, sensor["maxValue"])
	assert.Equal(t, h.board, sensor["board"].(map[string]interface{})["id"])
}

func TestListsAreNeverNull(t *testing.T) {
	api := newTestAPI(t, nil)

	for _, path := range []string{
		"/api/organizations",
		"/api/sites",
		"/api/sites/organization/" + missingID,
		"/api/measuring-points/site/" + missingID,
		"/api/boards/measuring-point/" + missingID,
		"/api/sensors/board/" + missingID,
	} {
		w := api.send(t, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, "[]", w.Body.String(), path)
	}
}

func TestListByParent(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)
	other := api.create(t, "/api/organizations", gin.H{"name": "Other"})
	api.create(t, "/api/sites", gin.H{"name": "Elsewhere", "organizationId": other})

	w := api.send(t, http.MethodGet, "/api/sites", nil, "")
	assert.Len(t, decodeList(t, w), 2)

	w = api.send(t, http.MethodGet, "/api/sites/organization/"+h.org, nil, "")
	sites := decodeList(t, w)
	require.Len(t, sites, 1)
	assert.Equal(t, "Plant", sites[0]["name"])
}

func TestMalformedIDs(t *testing.T) {
	api := newTestAPI(t, nil)

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/sites/xyz", "invalid id"},
		{http.MethodPut, "/api/boards/xyz", "invalid id"},
		{http.MethodDelete, "/api/sensors/xyz", "invalid id"},
		{http.MethodGet, "/api/sites/organization/xyz", "invalid organizationId"},
		{http.MethodGet, "/api/sensors/board/xyz", "invalid boardId"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := api.send(t, tt.method, tt.path, gin.H{}, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.want, decode(t, w)["error"])
		})
	}
}

func TestUpdateMergesFields(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodPut, "/api/organizations/"+h.org, gin.H{"city": "Zurich"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	org := decode(t, w)
	assert.Equal(t, "Acme", org["name"])
	assert.Equal(t, "CH", org["country"])
	assert.Equal(t, "Zurich", org["city"])
	assert.Equal(t, events.ActionUpdated, api.notifier.last().Action)

	w = api.send(t, http.MethodPut, "/api/organizations/"+h.org, gin.H{"country": ""}, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, hasCountry := decode(t, w)["country"]
	assert.False(t, hasCountry)

	w = api.send(t, http.MethodPut, "/api/boards/"+h.board, gin.H{"status": "maintenance"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	board := decode(t, w)
	assert.Equal(t, "maintenance", board["status"])
	assert.Equal(t, "SN-1", board["serialNumber"])
}

func TestUpdateReparent(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)
	other := api.create(t, "/api/organizations", gin.H{"name": "Other"})

	w := api.send(t, http.MethodPut, "/api/sites/"+h.site, gin.H{"organizationId": missingID}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Organization not found", decode(t, w)["error"])

	w = api.send(t, http.MethodPut, "/api/sites/"+h.site, gin.H{"organizationId": other}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, other, decode(t, w)["organizationId"])
	assert.Equal(t, other, api.notifier.last().ParentID)
}

func TestUpdateMissing(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.send(t, http.MethodPut, "/api/sensors/"+missingID, gin.H{"name": "x"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sensor not found", decode(t, w)["error"])
}

func TestDuplicateSerialNumber(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodPost, "/api/boards", gin.H{"name": "B-2", "serialNumber": "SN-1", "measuringPointId": h.point}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Board with this serialNumber already exists", decode(t, w)["error"])

	second := api.create(t, "/api/boards", gin.H{"name": "B-2", "measuringPointId": h.point})
	w = api.send(t, http.MethodPut, "/api/boards/"+second, gin.H{"serialNumber": "SN-1"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSensorRange(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodPost, "/api/sensors", gin.H{"name": "pH", "type": "PH", "minValue": 14, "maxValue": 0, "boardId": h.board}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, "maxValue", body["errors"].([]interface{})[0].(map[string]interface{})["field"])

	// The stored maxValue is 50, so a new minValue of 60 breaks the range.
	w = api.send(t, http.MethodPut, "/api/sensors/"+h.sensor, gin.H{"minValue": 60}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.send(t, http.MethodPut, "/api/sensors/"+h.sensor, gin.H{"minValue": 0}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["minValue"])
}

func TestSensorTypes(t *testing.T) {
	api := newTestAPI(t, nil)

	w := api.send(t, http.MethodGet, "/api/sensors/types", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TEMPERATURE")
	assert.Contains(t, w.Body.String(), "HUMIDITY")
	assert.Contains(t, w.Body.String(), "PH")
}

func TestDeleteThenGet(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodDelete, "/api/sensors/"+h.sensor, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Sensor successfully deleted", body["message"])
	assert.Equal(t, 1.0, body["deleted"])

	last := api.notifier.last()
	assert.Equal(t, events.ActionDeleted, last.Action)
	assert.Equal(t, "sensors", last.Resource)

	w = api.send(t, http.MethodGet, "/api/sensors/"+h.sensor, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Sensor not found", decode(t, w)["error"])

	w = api.send(t, http.MethodDelete, "/api/sensors/"+h.sensor, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteWithoutCascadeOrphansChildren(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodDelete, "/api/organizations/"+h.org, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["deleted"])

	w = api.send(t, http.MethodGet, "/api/sites/"+h.site, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["organization"])
}

func TestDeleteCascade(t *testing.T) {
	api := newTestAPI(t, nil)
	h := api.seed(t)

	w := api.send(t, http.MethodDelete, "/api/organizations/"+h.org+"?cascade=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5.0, decode(t, w)["deleted"])
	assert.True(t, api.notifier.last().Cascade)

	for _, path := range []string{"/api/sites/" + h.site, "/api/boards/" + h.board, "/api/sensors/" + h.sensor} {
		w = api.send(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}

	w = api.send(t, http.MethodDelete, "/api/sites/"+missingID+"?cascade=maybe", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid cascade", decode(t, w)["error"])
}

func TestAuthEnabledFlow(t *testing.T) {
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:            "secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "test",
	})
	auth := middleware.NewAuthMiddleware(jwtService, true, middleware.DefaultConfig())
	api := newTestAPI(t, auth)

	ctx := context.Background()
	users := api.store.Users()
	for _, u := range []struct{ name, role string }{{"admin", auth_models.RoleAdmin}, {"viewer", auth_models.RoleViewer}} {
		hash, err := service.HashPassword("password123")
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, auth_models.NewUser(u.name, u.name+"@example.com", hash, u.role)))
	}
	authService := service.NewAuthService(users, jwtService)
	NewAuthController(authService, auth, logger.NewNop(), false).RegisterRoutes(api.router)

	login := func(name string) string {
		w := api.send(t, http.MethodPost, "/api/auth/login", gin.H{"username": name, "password": "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		return decode(t, w)["access_token"].(string)
	}

	w := api.send(t, http.MethodGet, "/api/organizations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.send(t, http.MethodPost, "/api/auth/login", gin.H{"username": "admin", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	viewer := login("viewer")
	w = api.send(t, http.MethodGet, "/api/organizations", nil, viewer)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.send(t, http.MethodPost, "/api/organizations", gin.H{"name": "Acme"}, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := login("admin")
	w = api.send(t, http.MethodPost, "/api/organizations", gin.H{"name": "Acme"}, admin)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = api.send(t, http.MethodGet, "/api/auth/me", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["username"])
}

func TestRefreshFromBody(t *testing.T) {
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:            "secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "test",
	})
	auth := middleware.NewAuthMiddleware(jwtService, true, middleware.DefaultConfig())
	api := newTestAPI(t, auth)

	hash, err := service.HashPassword("password123")
	require.NoError(t, err)
	user := auth_models.NewUser("admin", "admin@example.com", hash, auth_models.RoleAdmin)
	require.NoError(t, api.store.Users().Create(context.Background(), user))
	NewAuthController(service.NewAuthService(api.store.Users(), jwtService), auth, logger.NewNop(), false).RegisterRoutes(api.router)

	pair, err := jwtService.GenerateTokens(user.ID.Hex(), user.Role)
	require.NoError(t, err)

	w := api.send(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": pair.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["access_token"])

	w = api.send(t, http.MethodPost, "/api/auth/refresh", gin.H{"refresh_token": pair.AccessToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.send(t, http.MethodPost, "/api/auth/refresh", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	var down bool
	checker := health.NewHealthChecker("test", time.Second)
	checker.AddCheck("mongo", true, func(context.Context) error {
		if down {
			return errors.New("no primary")
		}
		return nil
	})
	router := gin.New()
	NewHealthController(checker).RegisterRoutes(router)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, get("/health/live").Code)
	assert.Equal(t, http.StatusOK, get("/health/ready").Code)

	down = true
	w := get("/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
	assert.Equal(t, http.StatusOK, get("/health/live").Code)
}
