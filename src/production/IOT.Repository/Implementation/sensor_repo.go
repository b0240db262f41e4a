package implementation

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoSensorRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoSensorRepository(db *mongo.Database) *MongoSensorRepository {
	return &MongoSensorRepository{db: db, coll: db.Collection(sensorsCollection)}
}

func (r *MongoSensorRepository) Create(ctx context.Context, sensor *asset_models.Sensor) error {
	sensor.CreatedAt = now()
	sensor.UpdatedAt = sensor.CreatedAt
	sensor.ID = primitive.NilObjectID

	id, err := insertOne(ctx, r.coll, sensor)
	if err != nil {
		return err
	}
	sensor.ID = id
	return nil
}

func (r *MongoSensorRepository) Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Sensor, error) {
	return findByID[asset_models.Sensor](ctx, r.coll, id)
}

func (r *MongoSensorRepository) List(ctx context.Context) ([]asset_models.Sensor, error) {
	return findAll[asset_models.Sensor](ctx, r.coll, bson.M{})
}

func (r *MongoSensorRepository) ListByBoard(ctx context.Context, boardID primitive.ObjectID) ([]asset_models.Sensor, error) {
	return findAll[asset_models.Sensor](ctx, r.coll, bson.M{"boardId": boardID})
}

func (r *MongoSensorRepository) Update(ctx context.Context, id primitive.ObjectID, patch interfaces.SensorPatch) (*asset_models.Sensor, error) {
	u := newFieldUpdate()
	setIf(u, "name", patch.Name)
	setIf(u, "type", patch.Type)
	u.optionalString("unit", patch.Unit)
	setIf(u, "minValue", patch.MinValue)
	setIf(u, "maxValue", patch.MaxValue)
	u.optionalString("description", patch.Description)
	setIf(u, "status", patch.Status)
	setIf(u, "boardId", patch.BoardID)

	return updateByID[asset_models.Sensor](ctx, r.coll, id, u)
}

func (r *MongoSensorRepository) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	return deleteTree(ctx, r.db, levelSensor, id, false)
}
