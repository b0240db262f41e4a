package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongType    = errors.New("wrong token type")
)

// Service signs and validates HS256 tokens
type Service struct {
	config api_models.Config
	now    func() time.Time
}

// NewService creates a new JWT service
func NewService(config api_models.Config) *Service {
	return &Service{
		config: config,
		now:    time.Now,
	}
}

// GenerateTokens creates an access and a refresh token sharing one token id
func (s *Service) GenerateTokens(userID, role string) (*api_models.TokenPair, error) {
	tokenID := uuid.New().String()
	now := s.now()
	expiresAt := now.Add(s.config.AccessTokenDuration)
	refreshExpiresAt := now.Add(s.config.RefreshTokenDuration)

	accessClaims := api_models.AccessClaims{
		RegisteredClaims: s.registered(userID, now, expiresAt),
		UserID:           userID,
		Role:             role,
		TokenID:          tokenID,
		Type:             api_models.TokenTypeAccess,
	}

	refreshClaims := api_models.RefreshClaims{
		RegisteredClaims: s.registered(userID, now, refreshExpiresAt),
		UserID:           userID,
		TokenID:          tokenID,
		Type:             api_models.TokenTypeRefresh,
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &api_models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenID:      tokenID,
		ExpiresAt:    expiresAt.Unix(),

		RefreshExpiresAt: refreshExpiresAt.Unix(),
	}, nil
}

func (s *Service) registered(subject string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		NotBefore: jwt.NewNumericDate(issuedAt),
		Issuer:    s.config.Issuer,
	}
}

// ValidateAccessToken validates an access token and returns the claims
func (s *Service) ValidateAccessToken(tokenString string) (*api_models.AccessClaims, error) {
	claims := &api_models.AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != api_models.TokenTypeAccess {
		return nil, ErrWrongType
	}
	return claims, nil
}

// ValidateRefreshToken validates a refresh token and returns the claims
func (s *Service) ValidateRefreshToken(tokenString string) (*api_models.RefreshClaims, error) {
	claims := &api_models.RefreshClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Type != api_models.TokenTypeRefresh {
		return nil, ErrWrongType
	}
	return claims, nil
}

func (s *Service) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
