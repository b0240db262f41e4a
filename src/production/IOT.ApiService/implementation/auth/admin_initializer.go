package auth

import (
	"context"
	"fmt"

	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	logger "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Logger"
	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
)

// AdminInitializer creates the bootstrap admin account
type AdminInitializer struct {
	userRepo    interfaces.UserRepository
	logger      *logger.Logger
	adminConfig config.AdminConfig
}

func NewAdminInitializer(userRepo interfaces.UserRepository, logger *logger.Logger, adminConfig config.AdminConfig) *AdminInitializer {
	return &AdminInitializer{
		userRepo:    userRepo,
		logger:      logger,
		adminConfig: adminConfig,
	}
}

// InitializeAdminUser creates the first admin user if no admin users exist
func (s *AdminInitializer) InitializeAdminUser(ctx context.Context) error {
	count, err := s.userRepo.CountByRole(ctx, auth_models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if count > 0 {
		s.logger.Logger.Info().Int64("count", count).Msg("Admin users already exist, skipping admin user creation")
		return nil
	}

	s.logger.Logger.Info().Msg("No admin users found. Creating first admin user...")

	hashedPassword, err := HashPassword(s.adminConfig.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	adminUser := auth_models.NewUser(s.adminConfig.Username, s.adminConfig.Email, hashedPassword, auth_models.RoleAdmin)
	if err := s.userRepo.Create(ctx, adminUser); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	s.logger.Logger.Info().Str("username", s.adminConfig.Username).Str("email", s.adminConfig.Email).Msg("Admin user created with configured credentials")
	s.logger.Logger.Warn().Msg("IMPORTANT: Change the admin password after first login for security!")
	return nil
}
