package implementation

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoDataResetter struct {
	db *mongo.Database
}

func NewMongoDataResetter(db *mongo.Database) *MongoDataResetter {
	return &MongoDataResetter{db: db}
}

// DeleteAll empties the asset collections leaf first. Users are kept.
func (r *MongoDataResetter) DeleteAll(ctx context.Context) error {
	for i := len(hierarchy) - 1; i >= 0; i-- {
		coll := r.db.Collection(hierarchy[i].collection)
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("failed to clean %s: %w", coll.Name(), err)
		}
	}
	return nil
}
