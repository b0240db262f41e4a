package interfaces

import (
	"context"

	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRepository interface {
	// Create fails with a DuplicateKeyError on a reused username or email
	Create(ctx context.Context, user *auth_models.User) error

	GetByID(ctx context.Context, id primitive.ObjectID) (*auth_models.User, error)
	GetByUsername(ctx context.Context, username string) (*auth_models.User, error)
	CountByRole(ctx context.Context, role string) (int64, error)
}
