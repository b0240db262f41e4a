package implementation

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	config "gitlab.com/maplesense1/iot.asset_registry/src/production/IOT.Config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	organizationsCollection   = "organizations"
	sitesCollection           = "sites"
	measuringPointsCollection = "measuring_points"
	boardsCollection          = "boards"
	sensorsCollection         = "sensors"
	usersCollection           = "users"
)

// Unique index names, mapped back to the offending field on duplicate key errors
const (
	boardSerialNumberIndex = "boards_serial_number_unique"
	userUsernameIndex      = "users_username_unique"
	userEmailIndex         = "users_email_unique"
)

var uniqueIndexFields = map[string]string{
	boardSerialNumberIndex: "serialNumber",
	userUsernameIndex:      "username",
	userEmailIndex:         "email",
}

// ConnectMongoWithTimeout creates a MongoDB client and pings the primary
func ConnectMongoWithTimeout(cfg config.DatabaseConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout)

	if cfg.UseTLS {
		clientOptions.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("unable to ping MongoDB: %w", err)
	}

	return client, nil
}

// EnsureIndexes creates the parent lookup indexes and unique constraints
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		sitesCollection: {
			{Keys: bson.D{{Key: "organizationId", Value: 1}}},
		},
		measuringPointsCollection: {
			{Keys: bson.D{{Key: "siteId", Value: 1}}},
		},
		boardsCollection: {
			{Keys: bson.D{{Key: "measuringPointId", Value: 1}}},
			{
				Keys: bson.D{{Key: "serialNumber", Value: 1}},
				Options: options.Index().
					SetName(boardSerialNumberIndex).
					SetUnique(true).
					SetPartialFilterExpression(bson.M{"serialNumber": bson.M{"$type": "string"}}),
			},
		},
		sensorsCollection: {
			{Keys: bson.D{{Key: "boardId", Value: 1}}},
		},
		usersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(userUsernameIndex).SetUnique(true)},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(userEmailIndex).SetUnique(true)},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}

	return nil
}

// PingMongo checks that the primary is reachable
func PingMongo(ctx context.Context, client *mongo.Client) error {
	if client == nil {
		return fmt.Errorf("mongo client is nil")
	}
	return client.Ping(ctx, readpref.Primary())
}
