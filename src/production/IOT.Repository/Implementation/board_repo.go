package implementation

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoBoardRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoBoardRepository(db *mongo.Database) *MongoBoardRepository {
	return &MongoBoardRepository{db: db, coll: db.Collection(boardsCollection)}
}

// Create relies on the partial unique index on serialNumber
func (r *MongoBoardRepository) Create(ctx context.Context, board *asset_models.Board) error {
	board.CreatedAt = now()
	board.UpdatedAt = board.CreatedAt
	board.ID = primitive.NilObjectID

	id, err := insertOne(ctx, r.coll, board)
	if err != nil {
		return err
	}
	board.ID = id
	return nil
}

func (r *MongoBoardRepository) Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Board, error) {
	return findByID[asset_models.Board](ctx, r.coll, id)
}

func (r *MongoBoardRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *MongoBoardRepository) List(ctx context.Context) ([]asset_models.Board, error) {
	return findAll[asset_models.Board](ctx, r.coll, bson.M{})
}

func (r *MongoBoardRepository) ListByMeasuringPoint(ctx context.Context, measuringPointID primitive.ObjectID) ([]asset_models.Board, error) {
	return findAll[asset_models.Board](ctx, r.coll, bson.M{"measuringPointId": measuringPointID})
}

func (r *MongoBoardRepository) Update(ctx context.Context, id primitive.ObjectID, patch interfaces.BoardPatch) (*asset_models.Board, error) {
	u := newFieldUpdate()
	setIf(u, "name", patch.Name)
	u.optionalString("serialNumber", patch.SerialNumber)
	u.optionalString("firmwareVersion", patch.FirmwareVersion)
	u.optionalString("description", patch.Description)
	setIf(u, "status", patch.Status)
	setIf(u, "measuringPointId", patch.MeasuringPointID)

	return updateByID[asset_models.Board](ctx, r.coll, id, u)
}

func (r *MongoBoardRepository) Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	return deleteTree(ctx, r.db, levelBoard, id, cascade)
}
