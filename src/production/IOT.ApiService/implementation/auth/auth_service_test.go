package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/memory"
)

func newAuthFixture(t *testing.T) (*AuthService, *jwt.Service, interfaces.UserRepository) {
	t.Helper()
	users := memory.NewStore().Users()
	jwtService := jwt.NewService(api_models.Config{
		SecretKey:            "secret",
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "test",
	})

	initializer := NewAdminInitializer(users, logger.NewNop(), config.AdminConfig{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "adminpassword123",
	})
	require.NoError(t, initializer.InitializeAdminUser(context.Background()))
	return NewAuthService(users, jwtService), jwtService, users
}

func TestInitializeAdminUserIsIdempotent(t *testing.T) {
	_, _, users := newAuthFixture(t)
	initializer := NewAdminInitializer(users, logger.NewNop(), config.AdminConfig{Username: "admin2", Email: "a2@example.com", Password: "whatever123"})
	require.NoError(t, initializer.InitializeAdminUser(context.Background()))

	n, err := users.CountByRole(context.Background(), auth_models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := users.GetByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.NotEqual(t, "adminpassword123", u.Password)
}

func TestLogin(t *testing.T) {
	svc, jwtService, _ := newAuthFixture(t)

	resp, pair, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "adminpassword123"})
	require.NoError(t, err)
	assert.Equal(t, auth_models.RoleAdmin, resp.Role)
	assert.Equal(t, pair.AccessToken, resp.AccessToken)

	claims, err := jwtService.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.UserID, claims.UserID)

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, _, users := newAuthFixture(t)
	hash, err := HashPassword("viewerpass")
	require.NoError(t, err)
	u := auth_models.NewUser("viewer", "viewer@example.com", hash, auth_models.RoleViewer)
	u.Active = false
	require.NoError(t, users.Create(context.Background(), u))

	_, _, err = svc.Login(context.Background(), LoginRequest{Username: "viewer", Password: "viewerpass"})
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestRefreshTokens(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	_, pair, err := svc.Login(context.Background(), LoginRequest{Username: "admin", Password: "adminpassword123"})
	require.NoError(t, err)

	resp, newPair, err := svc.RefreshTokens(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, pair.TokenID, newPair.TokenID)

	_, _, err = svc.RefreshTokens(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, jwt.ErrWrongType)
}
