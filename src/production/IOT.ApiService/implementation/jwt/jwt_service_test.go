package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
)

func newTestService() *Service {
	return NewService(api_models.Config{
		SecretKey:            "test-secret",
		AccessTokenDuration:  15 * time.Minute,
		RefreshTokenDuration: time.Hour,
		Issuer:               "iot-asset-registry",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	s := newTestService()

	pair, err := s.GenerateTokens("user-1", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.TokenID)

	access, err := s.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "admin", access.Role)
	assert.Equal(t, pair.TokenID, access.TokenID)

	refresh, err := s.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID)
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	s := newTestService()
	pair, err := s.GenerateTokens("user-1", "viewer")
	require.NoError(t, err)

	_, err = s.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongType)

	_, err = s.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestExpiredToken(t *testing.T) {
	s := newTestService()
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	pair, err := s.GenerateTokens("user-1", "admin")
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSecretOrIssuer(t *testing.T) {
	pair, err := newTestService().GenerateTokens("user-1", "admin")
	require.NoError(t, err)

	other := NewService(api_models.Config{SecretKey: "other", AccessTokenDuration: time.Minute, Issuer: "iot-asset-registry"})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := NewService(api_models.Config{SecretKey: "test-secret", AccessTokenDuration: time.Minute, Issuer: "someone-else"})
	_, err = foreign.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = newTestService().ValidateAccessToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
