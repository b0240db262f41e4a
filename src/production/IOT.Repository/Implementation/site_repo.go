package implementation

import (
	"context"

	asset_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/assets"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoSiteRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewMongoSiteRepository(db *mongo.Database) *MongoSiteRepository {
	return &MongoSiteRepository{db: db, coll: db.Collection(sitesCollection)}
}

func (r *MongoSiteRepository) Create(ctx context.Context, site *asset_models.Site) error {
	site.CreatedAt = now()
	site.UpdatedAt = site.CreatedAt
	site.ID = primitive.NilObjectID

	id, err := insertOne(ctx, r.coll, site)
	if err != nil {
		return err
	}
	site.ID = id
	return nil
}

func (r *MongoSiteRepository) Get(ctx context.Context, id primitive.ObjectID) (*asset_models.Site, error) {
	return findByID[asset_models.Site](ctx, r.coll, id)
}

func (r *MongoSiteRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return existsByID(ctx, r.coll, id)
}

func (r *MongoSiteRepository) List(ctx context.Context) ([]asset_models.Site, error) {
	return findAll[asset_models.Site](ctx, r.coll, bson.M{})
}

func (r *MongoSiteRepository) ListByOrganization(ctx context.Context, organizationID primitive.ObjectID) ([]asset_models.Site, error) {
	return findAll[asset_models.Site](ctx, r.coll, bson.M{"organizationId": organizationID})
}

func (r *MongoSiteRepository) Update(ctx context.Context, id primitive.ObjectID, patch interfaces.SitePatch) (*asset_models.Site, error) {
	u := newFieldUpdate()
	setIf(u, "name", patch.Name)
	u.optionalString("description", patch.Description)
	u.optionalString("location", patch.Location)
	setIf(u, "organizationId", patch.OrganizationID)

	return updateByID[asset_models.Site](ctx, r.coll, id, u)
}

func (r *MongoSiteRepository) Delete(ctx context.Context, id primitive.ObjectID, cascade bool) (int64, error) {
	return deleteTree(ctx, r.db, levelSite, id, cascade)
}
