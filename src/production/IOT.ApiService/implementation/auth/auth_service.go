package auth

import (
	"context"
	"errors"
	"fmt"

	jwt "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.ApiService/implementation/jwt"
	api_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/api"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is disabled")
)

// AuthService aggregates auth operations
type AuthService struct {
	userRepo   interfaces.UserRepository
	jwtService *jwt.Service
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenID     string `json:"token_id"`
	ExpiresAt   int64  `json:"expires_at"`
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenID     string `json:"token_id"`
	ExpiresAt   int64  `json:"expires_at"`
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo interfaces.UserRepository, jwtService *jwt.Service) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, *api_models.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, nil, ErrInactiveUser
	}

	tokenPair, err := s.jwtService.GenerateTokens(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, nil, err
	}

	return &AuthResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
		UserID:      user.ID.Hex(),
		Username:    user.Username,
		Email:       user.Email,
		Role:        user.Role,
	}, tokenPair, nil
}

// RefreshTokens issues a new pair. The role is read again from the user
// record so a demoted user loses admin rights on the next refresh.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*RefreshTokenResponse, *api_models.TokenPair, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.Active {
		return nil, nil, ErrInactiveUser
	}

	tokenPair, err := s.jwtService.GenerateTokens(user.ID.Hex(), user.Role)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	return &RefreshTokenResponse{
		AccessToken: tokenPair.AccessToken,
		TokenID:     tokenPair.TokenID,
		ExpiresAt:   tokenPair.ExpiresAt,
	}, tokenPair, nil
}

// GetUserByID retrieves a user by hex id
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*auth_models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, interfaces.ErrInvalidID
	}
	return s.userRepo.GetByID(ctx, id)
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}
