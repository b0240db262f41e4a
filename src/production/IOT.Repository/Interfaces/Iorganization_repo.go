package interfaces

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationRepository interface {
	// Create assigns ID and timestamps on org
	Create(ctx context.Context, org *asset_models.Organization) error

	// Read organizations
	Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Organization, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]asset_models.Organization, error)

	// Update applies only the non-nil fields of patch
	Update(ctx context.Context, id primitive.ObjectID, patch OrganizationPatch) (*asset_models.Organization, error)

	// Delete returns the number of removed documents, descendants included when cascading
	Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error)
}
