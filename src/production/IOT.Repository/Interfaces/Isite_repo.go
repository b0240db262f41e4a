package interfaces

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SiteRepository interface {
	Create(ctx context.Context, site *asset_models.Site) error

	Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Site, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]asset_models.Site, error)
	ListByOrganization(ctx context.Context, organizationID primitive.ObjectID) ([]asset_models.Site, error)

	Update(ctx context.Context, id primitive.ObjectID, patch SitePatch) (*asset_models.Site, error)

	Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error)
}
