package implementation

import (
	"context"
	"errors"
	"fmt"

	auth_models "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Models/auth"
	interfaces "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *auth_models.User) error {
	user.ID = primitive.NilObjectID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now()
	}
	user.UpdatedAt = user.CreatedAt

	id, err := insertOne(ctx, r.coll, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*auth_models.User, error) {
	return findByID[auth_models.User](ctx, r.coll, id)
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*auth_models.User, error) {
	var user auth_models.User
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"role": role})
	if err != nil {
		return 0, fmt.Errorf("count users by role: %w", err)
	}
	return n, nil
}
