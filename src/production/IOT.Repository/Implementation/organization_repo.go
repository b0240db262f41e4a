package implementation

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoOrganizationRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoOrganizationRepository(db *mongo.Database) *MongoOrganizationRepository {
	return &MongoOrganizationRepository{db: db, coll: db.Collection(organizationsCollection)}
}

func (r *MongoOrganizationRepository) Create(ctx context.Context, org *asset_models.Organization) error {
	org.CreatedAt = now()
	org.UpdatedAt = org.CreatedAt
	org.ID = primitive.NilObjectID

	id, err := insertOne(ctx, r.coll, org)
	if err != nil {
		return err
	}
	org.ID = id
	return nil
}

func (r *MongoOrganizationRepository) Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Organization, error) {
	return findByID[asset_models.Organization](ctx, r.coll, id)
}

func (r *MongoOrganizationRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *MongoOrganizationRepository) List(ctx context.Context) ([]asset_models.Organization, error) {
	return findAll[asset_models.Organization](ctx, r.coll, bson.M{})
}

func (r *MongoOrganizationRepository) Update(ctx context.Context, id primitive.ObjectID, patch interfaces.OrganizationPatch) (*asset_models.Organization, error) {
	u := newFieldUpdate()
	setIf(u, "name", patch.Name)
	u.optionalString("country", patch.Country)
	u.optionalString("state", patch.State)
	u.optionalString("city", patch.City)
	u.optionalString("address", patch.Address)
	u.optionalString("zipcode", patch.Zipcode)
	u.optionalString("description", patch.Description)

	return updateByID[asset_models.Organization](ctx, r.coll, id, u)
}

func (r *MongoOrganizationRepository) Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	return deleteTree(ctx, r.db, levelOrganization, id, cascade)
}
