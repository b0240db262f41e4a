package interfaces

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SensorRepository interface {
	Create(ctx context.Context, sensor *asset_models.Sensor) error

	Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Sensor, error)
	List(ctx context.Context) ([]asset_models.Sensor, error)
	ListByBoard(ctx context.Context, boardID primitive.ObjectID) ([]asset_models.Sensor, error)

	Update(ctx context.Context, id primitive.ObjectID, patch SensorPatch) (*asset_models.Sensor, error)

	// Sensors are leaves, so there is nothing to cascade
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}
