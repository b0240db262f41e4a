package interfaces

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeasuringPointRepository interface {
	Create(ctx context.Context, point *asset_models.MeasuringPoint) error

	Get(ctx context.Context, id primitive.ObjectID) (*asset_models.MeasuringPoint, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]asset_models.MeasuringPoint, error)
	ListBySite(ctx context.Context, siteID primitive.ObjectID) ([]asset_models.MeasuringPoint, error)

	Update(ctx context.Context, id primitive.ObjectID, patch MeasuringPointPatch) (*asset_models.MeasuringPoint, error)

	Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error)
}
