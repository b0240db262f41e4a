package interfaces

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BoardRepository interface {
	// Create fails with a DuplicateKeyError on a reused serial number
	Create(ctx context.Context, board *asset_models.Board) error

	Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Board, error)
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	List(ctx context.Context) ([]asset_models.Board, error)
	ListByMeasuringPoint(ctx context.Context, measuringPointID primitive.ObjectID) ([]asset_models.Board, error)

	Update(ctx context.Context, id primitive.ObjectID, patch BoardPatch) (*asset_models.Board, error)

	Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error)
}
