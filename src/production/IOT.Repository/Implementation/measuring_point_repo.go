package implementation

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoMeasuringPointRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoMeasuringPointRepository(db *mongo.Database) *MongoMeasuringPointRepository {
	return &MongoMeasuringPointRepository{db: db, coll: db.Collection(measuringPointsCollection)}
}

func (r *MongoMeasuringPointRepository) Create(ctx context.Context, point *asset_models.MeasuringPoint) error {
	point.CreatedAt = now()
	point.UpdatedAt = point.CreatedAt
	point.ID = primitive.NilObjectID

	id, err := insertOne(ctx, r.coll, point)
	if err != nil {
		return err
	}
	point.ID = id
	return nil
}

func (r *MongoMeasuringPointRepository) Get(ctx context.Context, id primitive.ObjectID) (*asset_models.MeasuringPoint, error) {
	return findByID[asset_models.MeasuringPoint](ctx, r.coll, id)
}

func (r *MongoMeasuringPointRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *MongoMeasuringPointRepository) List(ctx context.Context) ([]asset_models.MeasuringPoint, error) {
	return findAll[asset_models.MeasuringPoint](ctx, r.coll, bson.M{})
}

func (r *MongoMeasuringPointRepository) ListBySite(ctx context.Context, siteID primitive.ObjectID) ([]asset_models.MeasuringPoint, error) {
	return findAll[asset_models.MeasuringPoint](ctx, r.coll, bson.M{"siteId": siteID})
}

func (r *MongoMeasuringPointRepository) Update(ctx context.Context, id primitive.ObjectID, patch interfaces.MeasuringPointPatch) (*asset_models.MeasuringPoint, error) {
	u := newFieldUpdate()
	setIf(u, "name", patch.Name)
	u.optionalString("description", patch.Description)
	setIf(u, "coordinates", patch.Coordinates)
	setIf(u, "siteId", patch.SiteID)

	return updateByID[asset_models.MeasuringPoint](ctx, r.coll, id, u)
}

func (r *MongoMeasuringPointRepository) Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	return deleteTree(ctx, r.db, levelMeasuringPoint, id, cascade)
}
